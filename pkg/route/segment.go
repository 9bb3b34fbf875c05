package route

import (
	"io"
)

// Segmenter partitions a merged, non-decreasing stream into groups sharing
// the same timestamp/SegmentDuration index. Groups come out in order, and
// each group must be fully drained before the next is requested — the
// underlying decode stream cannot rewind. Requesting the next group skips
// whatever remains of the current one.
type Segmenter struct {
	src     Stream
	pending *LogInput // first input of the next group, already pulled
	current *SegmentGroup
	done    bool
}

func NewSegmenter(src Stream) *Segmenter {
	return &Segmenter{src: src}
}

// Next returns the next (index, sub-stream) group, or io.EOF.
func (s *Segmenter) Next() (*SegmentGroup, error) {
	if s.current != nil {
		// Drain any remainder of the previous group.
		for {
			_, err := s.current.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
		}
		s.current = nil
	}
	if s.done {
		return nil, io.EOF
	}
	if s.pending == nil {
		in, err := s.src.Next()
		if err == io.EOF {
			s.done = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		s.pending = &in
	}
	s.current = &SegmentGroup{
		Index: int64(s.pending.Timestamp() / SegmentDuration),
		seg:   s,
	}
	return s.current, nil
}

// SegmentGroup is the sub-stream of one segment. Valid for a single
// consumption pass.
type SegmentGroup struct {
	Index int64
	seg   *Segmenter
}

// Peek returns the group's next input without consuming it, or io.EOF at the
// end of the group.
func (g *SegmentGroup) Peek() (LogInput, error) {
	if err := g.fill(); err != nil {
		return LogInput{}, err
	}
	return *g.seg.pending, nil
}

// Next implements Stream over the group's time window.
func (g *SegmentGroup) Next() (LogInput, error) {
	if err := g.fill(); err != nil {
		return LogInput{}, err
	}
	in := *g.seg.pending
	g.seg.pending = nil
	return in, nil
}

func (g *SegmentGroup) fill() error {
	if g.seg.current != g {
		return io.EOF // a later group took over the source
	}
	if g.seg.pending == nil {
		in, err := g.seg.src.Next()
		if err == io.EOF {
			g.seg.done = true
			return io.EOF
		}
		if err != nil {
			return err
		}
		g.seg.pending = &in
	}
	if int64(g.seg.pending.Timestamp()/SegmentDuration) != g.Index {
		return io.EOF // belongs to the next group
	}
	return nil
}
