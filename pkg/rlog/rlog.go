// Package rlog writes the compressed binary event log of one route segment.
// Every event funnels through a single writeEvent that enforces the segment's
// monotonic clock: emitted timestamps are strictly increasing even when the
// requested timestamps are equal or regress.
package rlog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"capnproto.org/go/capnp/v3"
	"github.com/dsnet/compress/bzip2"

	"canroute/pkg/canlog"
	"canroute/pkg/cereal"
)

// Filename is the name of the event log inside a segment directory.
const Filename = "rlog.bz2"

const compressionLevel = 6

// Writer owns the event log file of one segment, and the segment's clock.
// Construct a fresh Writer per segment and Close it on every exit path, or
// the compressed trailer is lost and the artifact is unreadable.
type Writer struct {
	lastTimestamp time.Duration
	bz            *bzip2.Writer
	f             *os.File
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v: %w", path, err)
	}
	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: compressionLevel})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{bz: bz, f: f}, nil
}

// Close flushes the compressed stream and closes the file.
func (w *Writer) Close() error {
	err := w.bz.Close()
	if err2 := w.f.Close(); err == nil {
		err = err2
	}
	return err
}

// writeEvent serializes one event. This is the only place timestamps are
// adjusted: the emitted time is max(requested, last+1).
func (w *Writer) writeEvent(ts time.Duration, fill func(ev cereal.Event) error) error {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return err
	}
	ev, err := cereal.NewRootEvent(seg)
	if err != nil {
		return err
	}

	if ts < w.lastTimestamp+1 {
		ts = w.lastTimestamp + 1
	}
	w.lastTimestamp = ts

	ev.SetLogMonoTime(uint64(ts))
	ev.SetValid(true)
	if err := fill(ev); err != nil {
		return err
	}
	return capnp.NewEncoder(w.bz).Encode(msg)
}

// WriteInitData emits the empty marker event that opens every segment.
func (w *Writer) WriteInitData(ts time.Duration) error {
	return w.writeEvent(ts, func(ev cereal.Event) error {
		_, err := ev.NewInitData()
		return err
	})
}

// WriteCarParams emits the car identification event (segment 0 only).
func (w *Writer) WriteCarParams(ts time.Duration, carName, fingerprint string) error {
	return w.writeEvent(ts, func(ev cereal.Event) error {
		cp, err := ev.NewCarParams()
		if err != nil {
			return err
		}
		if err := cp.SetCarName(carName); err != nil {
			return err
		}
		return cp.SetCarFingerprint(fingerprint)
	})
}

func (w *Writer) WriteSentinel(ts time.Duration, sentinelType cereal.SentinelType) error {
	return w.writeEvent(ts, func(ev cereal.Event) error {
		s, err := ev.NewSentinel()
		if err != nil {
			return err
		}
		s.SetType(sentinelType)
		return nil
	})
}

// WriteCAN emits one event holding the whole batch, timestamped at the
// batch's first message. Empty batches are a no-op.
func (w *Writer) WriteCAN(msgs []canlog.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return w.writeEvent(msgs[0].Timestamp, func(ev cereal.Event) error {
		list, err := ev.NewCan(int32(len(msgs)))
		if err != nil {
			return err
		}
		for i, m := range msgs {
			cd := list.At(i)
			cd.SetAddress(m.ID)
			cd.SetSrc(m.Bus)
			if err := cd.SetDat(m.Data); err != nil {
				return err
			}
			cd.SetBusTime(uint16(m.Timestamp % 0xFFFF))
		}
		return nil
	})
}

// WriteFrameIndex records one video frame's identity and segment placement.
func (w *Writer) WriteFrameIndex(ts time.Duration, segmentNum int32, frameID uint32) error {
	return w.writeEvent(ts, func(ev cereal.Event) error {
		idx, err := ev.NewRoadEncodeIdx()
		if err != nil {
			return err
		}
		idx.SetFrameId(frameID)
		idx.SetType(cereal.EncodeIndexType_fullHEVC)
		idx.SetEncodeId(frameID)
		idx.SetSegmentNum(segmentNum)
		idx.SetSegmentId(frameID)
		idx.SetSegmentIdEncode(frameID)
		idx.SetTimestampSof(uint64(ts))
		idx.SetTimestampEof(uint64(ts))
		return nil
	})
}

func (w *Writer) WriteThumbnail(ts, tsEnd time.Duration, frameID uint32, jpeg []byte) error {
	return w.writeEvent(ts, func(ev cereal.Event) error {
		th, err := ev.NewThumbnail()
		if err != nil {
			return err
		}
		th.SetFrameId(frameID)
		th.SetTimestampEof(uint64(tsEnd))
		return th.SetThumbnail(jpeg)
	})
}

// WriteAlert maps an alert onto the viewer's alert surface. The message is
// split on its first newline into the two display lines; a nil message is a
// "clear" and sets the empty alert size instead of text.
func (w *Writer) WriteAlert(a canlog.Alert) error {
	return w.writeEvent(a.Timestamp, func(ev cereal.Event) error {
		cs, err := ev.NewControlsState()
		if err != nil {
			return err
		}
		cs.SetAlertStatus(alertStatus(a.Status))
		if a.Message == nil {
			cs.SetAlertSize(cereal.AlertSize_none)
			return nil
		}
		cs.SetAlertSize(cereal.AlertSize_small)
		line1, line2, _ := strings.Cut(*a.Message, "\n")
		if err := cs.SetAlertText1(line1); err != nil {
			return err
		}
		return cs.SetAlertText2(line2)
	})
}

func alertStatus(s canlog.AlertStatus) cereal.AlertStatus {
	switch s {
	case canlog.AlertUserPrompt:
		return cereal.AlertStatus_userPrompt
	case canlog.AlertCritical:
		return cereal.AlertStatus_critical
	default:
		return cereal.AlertStatus_normal
	}
}
