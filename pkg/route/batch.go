package route

import (
	"time"

	"canroute/pkg/canlog"
)

// CanEventSpan is the maximum time a single CAN event may cover: consecutive
// bus messages within this span share one emitted event.
const CanEventSpan = 10 * time.Millisecond

// Batcher accumulates consecutive CAN messages of one segment into
// bounded-duration batches. Only CAN-to-CAN spacing triggers a flush;
// interleaved frames or alerts do not.
type Batcher struct {
	pending []canlog.Message
}

// Add appends a message, first returning the batch that must be flushed if
// the new message would stretch the open batch past CanEventSpan. The
// returned slice is only valid until the next call.
func (b *Batcher) Add(m canlog.Message) []canlog.Message {
	var flush []canlog.Message
	if len(b.pending) > 0 && m.Timestamp-b.pending[0].Timestamp > CanEventSpan {
		flush = b.pending
		b.pending = nil
	}
	b.pending = append(b.pending, m)
	return flush
}

// Flush returns the open batch, if any, and resets the accumulator.
func (b *Batcher) Flush() []canlog.Message {
	flush := b.pending
	b.pending = nil
	return flush
}
