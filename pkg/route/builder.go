package route

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cyclopcam/logs"

	"canroute/pkg/canlog"
	"canroute/pkg/cereal"
	"canroute/pkg/rlog"
	"canroute/pkg/videoenc"
)

// VideoFilename is the name of the companion video inside a segment directory.
const VideoFilename = "qcamera.ts"

// ThumbnailInterval is the minimum spacing between embedded thumbnails.
const ThumbnailInterval = 2500 * time.Millisecond

// ErrFirstEventTooLate means the earliest input landed outside segment 0,
// which indicates a misconfigured time-sync offset.
var ErrFirstEventTooLate = errors.New("first event is not within the first segment (bad time-sync offset?)")

// FrameEncoder is the contract of the per-segment video encoder. Frames are
// sent in order; Finish must be called to flush the container trailer.
type FrameEncoder interface {
	SendFrame(f *videoenc.Frame) error
	Finish() error
}

// BuildOptions describes one log entry to convert.
type BuildOptions struct {
	// RouteBase is <data_dir>/<route_name>. Segment directories are created
	// as RouteBase + "--<index>".
	RouteBase      string
	CarName        string
	CarFingerprint string

	// Messages is the time-sorted CAN sequence of the entry.
	Messages []canlog.Message

	// Frames is the entry's video, or nil for a CAN-only entry.
	Frames     FrameSource
	VideoProps *videoenc.Properties

	// NewEncoder overrides encoder construction (used by tests). When nil,
	// videoenc.NewSegmentEncoder is used with VideoProps.
	NewEncoder func(path string) (FrameEncoder, error)
}

func (opts *BuildOptions) newEncoder(path string) (FrameEncoder, error) {
	if opts.NewEncoder != nil {
		return opts.NewEncoder(path)
	}
	return videoenc.NewSegmentEncoder(path, opts.VideoProps)
}

// Build runs the whole pipeline for one log entry: derives gap alerts, merges
// the three input sequences, partitions them into segments, and writes each
// segment's event log and companion video. Aborts on the first error; output
// files of an aborted run must be treated as invalid.
func Build(log logs.Log, opts BuildOptions) error {
	alerts := canlog.ExpandAlerts(canlog.DetectGaps(opts.Messages))
	if len(alerts) > 0 {
		log.Infof("Synthesized %v alert events from CAN reception gaps", len(alerts))
	}

	// Construction order sets the priority of equal-timestamp inputs:
	// CAN before Frame before Alert.
	srcs := []Stream{NewMessageStream(opts.Messages)}
	if opts.Frames != nil {
		srcs = append(srcs, NewFrameStream(opts.Frames))
	}
	srcs = append(srcs, NewAlertStream(alerts))

	segments := NewSegmenter(NewMerger(srcs...))
	firstGroup := true
	for {
		group, err := segments.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if firstGroup && group.Index != 0 {
			first, _ := group.Peek()
			return fmt.Errorf("%w: first timestamp is %v", ErrFirstEventTooLate, first.Timestamp())
		}
		firstGroup = false
		if err := writeSegment(log, &opts, group); err != nil {
			return err
		}
	}
	if firstGroup {
		log.Warnf("Log entry produced no inputs at all; no segments written")
	}
	return nil
}

func writeSegment(log logs.Log, opts *BuildOptions, group *SegmentGroup) error {
	segmentDir := fmt.Sprintf("%v--%v", opts.RouteBase, group.Index)
	log.Infof("Writing segment %v to %v", group.Index, segmentDir)
	if err := os.MkdirAll(segmentDir, 0775); err != nil {
		return fmt.Errorf("failed to create segment directory %v: %w", segmentDir, err)
	}

	w, err := rlog.NewWriter(filepath.Join(segmentDir, rlog.Filename))
	if err != nil {
		return err
	}
	err = writeSegmentEvents(log, opts, group, w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeSegmentEvents(log logs.Log, opts *BuildOptions, group *SegmentGroup, w *rlog.Writer) error {
	// Encoding the segment videos is the slowest part of a run, so an
	// existing output file means a previous run already did the work.
	videoPath := fmt.Sprintf("%v--%v", opts.RouteBase, group.Index)
	videoPath = filepath.Join(videoPath, VideoFilename)
	var encoder FrameEncoder
	if opts.Frames != nil {
		if _, err := os.Stat(videoPath); err == nil {
			log.Infof("Skipping existing %v", videoPath)
		} else {
			var err error
			encoder, err = opts.newEncoder(videoPath)
			if err != nil {
				return err
			}
		}
	}

	first, err := group.Peek()
	if err != nil {
		return err
	}
	firstTS := first.Timestamp()

	if err := w.WriteInitData(firstTS); err != nil {
		return err
	}
	if group.Index == 0 {
		if err := w.WriteCarParams(firstTS, opts.CarName, opts.CarFingerprint); err != nil {
			return err
		}
		if err := w.WriteSentinel(firstTS, cereal.SentinelType_startOfRoute); err != nil {
			return err
		}
	}
	if err := w.WriteSentinel(firstTS, cereal.SentinelType_startOfSegment); err != nil {
		return err
	}

	batcher := Batcher{}
	frameID := uint32(0)
	nextThumbnail := time.Duration(group.Index) * SegmentDuration

	for {
		in, err := group.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch {
		case in.CAN != nil:
			if flush := batcher.Add(*in.CAN); flush != nil {
				if err := w.WriteCAN(flush); err != nil {
					return err
				}
			}
		case in.Frame != nil:
			if encoder != nil {
				if err := encoder.SendFrame(in.Frame); err != nil {
					return err
				}
			}
			ts := in.Frame.Timestamp
			if err := w.WriteFrameIndex(ts, int32(group.Index), frameID); err != nil {
				return err
			}
			if ts >= nextThumbnail {
				jpg, err := in.Frame.JPEG(videoenc.ThumbnailMaxWidth)
				if err != nil {
					return err
				}
				if err := w.WriteThumbnail(ts, ts+videoenc.FrameInterval-1, frameID, jpg); err != nil {
					return err
				}
				nextThumbnail = ts + ThumbnailInterval
			}
			frameID++
		case in.Alert != nil:
			if err := w.WriteAlert(*in.Alert); err != nil {
				return err
			}
		}
	}

	if err := w.WriteCAN(batcher.Flush()); err != nil {
		return err
	}

	if encoder != nil {
		if err := encoder.Finish(); err != nil {
			return err
		}
		if frameID == 0 {
			// No frames landed in this segment, so drop the empty video file
			// instead of leaving a zero-byte artifact the viewer trips over.
			log.Warnf("Empty video for segment %v; the CAN log probably runs longer than the video", group.Index)
			if err := os.Remove(videoPath); err != nil {
				return err
			}
		}
	}

	// Closing marker, clock-advanced to last+1 rather than timed.
	return w.WriteSentinel(0, cereal.SentinelType_endOfSegment)
}
