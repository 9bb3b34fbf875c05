// Package canlog reads delimited CAN bus captures and derives reception-gap
// alerts from them. All timestamps are relative to the start of the combined
// recording (video time zero); records from before that point are dropped.
package canlog

import (
	"fmt"
	"strconv"
	"time"
)

// Message is one bus message parsed from a capture record.
// Immutable once created; ordered by Timestamp.
type Message struct {
	Timestamp time.Duration // relative to recording start
	ID        uint32
	Extended  bool
	Bus       uint8
	Data      []byte // 0..8 bytes
}

// parseRecord converts one CSV record into a Message. Field layout is
// timestamp_us, hex id, "true"/"false" extended flag, bus number, then a
// variable count of hex data bytes.
func parseRecord(fields []string, offset time.Duration) (Message, error) {
	if len(fields) < 4 {
		return Message{}, fmt.Errorf("expected at least 4 fields, got %v", len(fields))
	}
	tsUS, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("invalid timestamp %q: %w", fields[0], err)
	}
	id, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return Message{}, fmt.Errorf("invalid CAN id %q: %w", fields[1], err)
	}
	bus, err := strconv.ParseUint(fields[3], 10, 8)
	if err != nil {
		return Message{}, fmt.Errorf("invalid bus number %q: %w", fields[3], err)
	}
	data := make([]byte, 0, 8)
	for _, f := range fields[4:] {
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return Message{}, fmt.Errorf("invalid data byte %q: %w", f, err)
		}
		data = append(data, byte(b))
	}
	return Message{
		Timestamp: time.Duration(tsUS)*time.Microsecond - offset,
		ID:        uint32(id),
		Extended:  fields[2] == "true",
		Bus:       uint8(bus),
		Data:      data,
	}, nil
}
