package videoenc

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
)

const hevcBitrate = "500k"

// SegmentEncoder encodes the frames of one segment into an HEVC MPEG-TS
// file. Frames must be sent in segment video order. The encoder exclusively
// owns its output file until Finish, which flushes the container trailer;
// skipping Finish leaves a corrupt artifact.
type SegmentEncoder struct {
	path   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

// NewSegmentEncoder starts an encoder writing to path, sized from the source
// video's properties.
func NewSegmentEncoder(path string, props *Properties) (*SegmentEncoder, error) {
	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%vx%v", props.OutWidth, props.OutHeight),
		"-r", fmt.Sprintf("%v", TargetFPS),
		"-i", "pipe:0",
		"-c:v", "libx265",
		"-b:v", hevcBitrate,
		"-an",
		"-f", "mpegts",
		path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	e := &SegmentEncoder{
		path:  path,
		cmd:   cmd,
		stdin: stdin,
	}
	cmd.Stderr = &e.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg encoder for %v: %w", path, err)
	}
	return e, nil
}

// SendFrame feeds one frame to the encoder.
func (e *SegmentEncoder) SendFrame(f *Frame) error {
	if _, err := e.stdin.Write(f.Pixels); err != nil {
		return fmt.Errorf("failed to send frame to encoder for %v: %w", e.path, err)
	}
	return nil
}

// Finish signals end of stream and waits for the encoder to flush and exit.
func (e *SegmentEncoder) Finish() error {
	if e.cmd == nil {
		return nil
	}
	e.stdin.Close()
	err := e.cmd.Wait()
	e.cmd = nil
	return wrapExitErr("ffmpeg encode "+e.path, err, e.stderr.Bytes())
}
