package rlog

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"

	"capnproto.org/go/capnp/v3"

	"canroute/pkg/cereal"
)

// ReadAll decodes every event from a segment log, in stream order. Intended
// for verification and debugging; the write path never reads its own output.
func ReadAll(path string) ([]cereal.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []cereal.Event
	dec := capnp.NewDecoder(bzip2.NewReader(f))
	for {
		msg, err := dec.Decode()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %v of %v: %w", len(events), path, err)
		}
		ev, err := cereal.ReadRootEvent(msg)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}
