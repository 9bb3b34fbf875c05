package videoenc

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Properties captures the source video attributes the pipeline needs. The
// source ffmpeg context can't be shared between the decode and encode sides,
// so we copy the relevant values around instead.
type Properties struct {
	Width     int // source frame size
	Height    int
	OutWidth  int // encoded/decoded frame size, capped at VideoMaxWidth
	OutHeight int
	Rotation  int // display rotation in degrees
	Duration  time.Duration
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		SideData  []struct {
			Rotation int `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects a video file with ffprobe.
func Probe(path string) (*Properties, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path)
	out, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = exitErr.Stderr
		}
		return nil, wrapExitErr("ffprobe "+path, err, stderr)
	}

	probed := ffprobeOutput{}
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output for %v: %w", path, err)
	}

	for _, stream := range probed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.Width < 1 || stream.Height < 1 {
			return nil, fmt.Errorf("video stream in %v has invalid size %vx%v", path, stream.Width, stream.Height)
		}
		props := &Properties{
			Width:  stream.Width,
			Height: stream.Height,
		}
		props.OutWidth, props.OutHeight = outputSize(stream.Width, stream.Height, VideoMaxWidth)
		for _, sd := range stream.SideData {
			if sd.Rotation != 0 {
				props.Rotation = sd.Rotation
			}
		}
		if d := strings.TrimSpace(probed.Format.Duration); d != "" {
			seconds, err := strconv.ParseFloat(d, 64)
			if err == nil {
				props.Duration = time.Duration(seconds * float64(time.Second))
			}
		}
		return props, nil
	}
	return nil, fmt.Errorf("video file %v contained no video streams", path)
}
