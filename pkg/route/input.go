// Package route turns one captured log entry (CAN messages, optional video,
// derived alerts) into a route: a directory of fixed-duration segments, each
// holding a binary event log and an optional companion video file.
package route

import (
	"io"
	"time"

	"canroute/pkg/canlog"
	"canroute/pkg/videoenc"
)

// SegmentDuration is the length of one route segment.
const SegmentDuration = time.Minute

// LogInput is the closed union of everything that can enter the route log.
// Exactly one of the three fields is set. Ordering is by Timestamp only, so
// comparison stays centralized here instead of dispatched per variant.
type LogInput struct {
	CAN   *canlog.Message
	Frame *videoenc.Frame
	Alert *canlog.Alert
}

func (in LogInput) Timestamp() time.Duration {
	switch {
	case in.CAN != nil:
		return in.CAN.Timestamp
	case in.Frame != nil:
		return in.Frame.Timestamp
	default:
		return in.Alert.Timestamp
	}
}

// Stream is a pull source of LogInputs in non-decreasing timestamp order.
// Next returns io.EOF when the stream is exhausted. Streams cannot rewind;
// the frame stream in particular is backed by a stepwise decoder.
type Stream interface {
	Next() (LogInput, error)
}

type messageStream struct {
	msgs []canlog.Message
	pos  int
}

// NewMessageStream streams a time-sorted message slice.
func NewMessageStream(msgs []canlog.Message) Stream {
	return &messageStream{msgs: msgs}
}

func (s *messageStream) Next() (LogInput, error) {
	if s.pos >= len(s.msgs) {
		return LogInput{}, io.EOF
	}
	in := LogInput{CAN: &s.msgs[s.pos]}
	s.pos++
	return in, nil
}

type alertStream struct {
	alerts []canlog.Alert
	pos    int
}

// NewAlertStream streams a time-sorted alert slice.
func NewAlertStream(alerts []canlog.Alert) Stream {
	return &alertStream{alerts: alerts}
}

func (s *alertStream) Next() (LogInput, error) {
	if s.pos >= len(s.alerts) {
		return LogInput{}, io.EOF
	}
	in := LogInput{Alert: &s.alerts[s.pos]}
	s.pos++
	return in, nil
}

// FrameSource is the pull contract of the video decoder: frames come out in
// decode order, exactly once, and the source cannot be rewound.
type FrameSource interface {
	NextFrame() (*videoenc.Frame, error)
	Close() error
}

type frameStream struct {
	src FrameSource
}

// NewFrameStream adapts a video decoder to a Stream.
func NewFrameStream(src FrameSource) Stream {
	return &frameStream{src: src}
}

func (s *frameStream) Next() (LogInput, error) {
	frame, err := s.src.NextFrame()
	if err != nil {
		return LogInput{}, err
	}
	return LogInput{Frame: frame}, nil
}
