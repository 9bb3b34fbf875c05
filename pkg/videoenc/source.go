package videoenc

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/cyclopcam/logs"
)

// Source decodes a video file as a pull stream of RGB24 frames at TargetFPS,
// scaled to the output size and rotated upright. The underlying decoder
// cannot rewind: frames must be consumed in order, exactly once.
type Source struct {
	log      logs.Log
	path     string
	props    *Properties
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   bytes.Buffer
	frameIdx int64
	frameLen int
}

// NewSource probes the file and starts the decoder subprocess.
func NewSource(log logs.Log, path string) (*Source, error) {
	props, err := Probe(path)
	if err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("scale=%v:%v", props.OutWidth, props.OutHeight)
	if props.Rotation != 0 {
		filter = fmt.Sprintf("%v,rotate=%v*PI/180", filter, props.Rotation)
	}
	log.Infof("Decoding %v with filter %v", path, filter)

	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-i", path,
		"-vf", filter,
		"-r", fmt.Sprintf("%v", TargetFPS),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	s := &Source{
		log:      log,
		path:     path,
		props:    props,
		cmd:      cmd,
		stdout:   stdout,
		frameLen: props.OutWidth * props.OutHeight * 3,
	}
	cmd.Stderr = &s.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg for %v: %w", path, err)
	}
	return s, nil
}

func (s *Source) Properties() *Properties {
	return s.props
}

// NextFrame returns the next decoded frame, or io.EOF once the stream ends.
// Frame timestamps advance by FrameInterval from time zero.
func (s *Source) NextFrame() (*Frame, error) {
	pixels := make([]byte, s.frameLen)
	_, err := io.ReadFull(s.stdout, pixels)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if err := s.wait(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded frame from %v: %w", s.path, err)
	}
	frame := &Frame{
		Timestamp: time.Duration(s.frameIdx) * FrameInterval,
		Width:     s.props.OutWidth,
		Height:    s.props.OutHeight,
		Pixels:    pixels,
	}
	s.frameIdx++
	return frame, nil
}

func (s *Source) wait() error {
	if s.cmd == nil {
		return nil
	}
	err := s.cmd.Wait()
	s.cmd = nil
	return wrapExitErr("ffmpeg decode "+s.path, err, s.stderr.Bytes())
}

// Close releases the decoder. Safe to call after EOF.
func (s *Source) Close() error {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
		s.cmd = nil
	}
	return nil
}
