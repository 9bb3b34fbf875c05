package route

import (
	"io"
)

// Merger is a lazy k-way merge of individually time-sorted streams. Ties are
// broken by stream construction order, so callers control the priority of
// equal-timestamp inputs. The output holds at most one buffered element per
// source, never the whole sequence — required because the frame source is a
// stepwise decoder.
type Merger struct {
	srcs  []Stream
	heads []*LogInput
}

// NewMerger merges srcs by timestamp. Earlier sources win timestamp ties.
func NewMerger(srcs ...Stream) *Merger {
	return &Merger{
		srcs:  srcs,
		heads: make([]*LogInput, len(srcs)),
	}
}

// Next returns the globally next input, or io.EOF when every source is done.
func (m *Merger) Next() (LogInput, error) {
	best := -1
	for i, src := range m.srcs {
		if m.heads[i] == nil && src != nil {
			in, err := src.Next()
			if err == io.EOF {
				m.srcs[i] = nil
				continue
			}
			if err != nil {
				return LogInput{}, err
			}
			m.heads[i] = &in
		}
		if m.heads[i] != nil && (best == -1 || m.heads[i].Timestamp() < m.heads[best].Timestamp()) {
			best = i
		}
	}
	if best == -1 {
		return LogInput{}, io.EOF
	}
	in := *m.heads[best]
	m.heads[best] = nil
	return in, nil
}
