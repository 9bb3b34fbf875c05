// Package videoenc drives ffmpeg/ffprobe subprocesses for the pieces of the
// pipeline that touch pixels: probing the source video, decoding it as a
// stepwise frame stream, encoding per-segment qcamera files, and rasterizing
// JPEG thumbnails. Codec and container internals live entirely on the ffmpeg
// side of this boundary.
package videoenc

import (
	"fmt"
	"os/exec"
	"time"
)

const (
	// TargetFPS is the frame rate of the output video and of the decoded
	// frame stream. Source streams at higher rates are decimated.
	TargetFPS = 20

	// FrameInterval is the nanosecond spacing between output frames.
	FrameInterval = time.Second / TargetFPS

	// VideoMaxWidth is the maximum width of an encoded output frame.
	VideoMaxWidth = 1280

	// ThumbnailMaxWidth is the maximum width of an embedded JPEG thumbnail.
	ThumbnailMaxWidth = 640

	jpegQuality = 80
)

// exitError wraps a subprocess failure, preferring captured stderr over the
// bare exit status.
type exitError struct {
	cmd    string
	err    error
	stderr string
}

func (e *exitError) Error() string {
	if len(e.stderr) != 0 {
		return fmt.Sprintf("%v: %v", e.cmd, e.stderr)
	}
	return fmt.Sprintf("%v: %v", e.cmd, e.err)
}

func (e *exitError) Unwrap() error {
	return e.err
}

func wrapExitErr(cmd string, err error, stderr []byte) error {
	if err == nil {
		return nil
	}
	return &exitError{cmd: cmd, err: err, stderr: string(stderr)}
}

// outputSize scales a source resolution down to fit maxWidth, preserving
// aspect ratio. Heights round the way ffmpeg's scaler expects (even values).
func outputSize(width, height, maxWidth int) (int, int) {
	if width <= maxWidth {
		return width &^ 1, height &^ 1
	}
	outW := maxWidth
	outH := outW * height / width
	return outW &^ 1, outH &^ 1
}

// Available reports whether the ffmpeg tools are on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		return false
	}
	_, err = exec.LookPath("ffprobe")
	return err == nil
}
