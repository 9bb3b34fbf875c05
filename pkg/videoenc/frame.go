package videoenc

import (
	"fmt"
	"time"

	"github.com/bmharper/cimg/v2"
)

// Frame is one decoded video frame: tightly packed RGB24 pixels plus its
// timestamp relative to the start of the recording.
type Frame struct {
	Timestamp time.Duration
	Width     int
	Height    int
	Pixels    []byte
}

// JPEG rasterizes the frame to a JPEG thumbnail no wider than maxWidth.
func (f *Frame) JPEG(maxWidth int) ([]byte, error) {
	img := cimg.WrapImage(f.Width, f.Height, cimg.PixelFormatRGB, f.Pixels)
	if f.Width > maxWidth {
		outW, outH := outputSize(f.Width, f.Height, maxWidth)
		small := cimg.NewImage(outW, outH, cimg.PixelFormatRGB)
		cimg.Resize(img, small, nil)
		img = small
	}
	jpg, err := cimg.Compress(img, cimg.MakeCompressParams(cimg.Sampling420, jpegQuality, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail JPEG: %w", err)
	}
	return jpg, nil
}
