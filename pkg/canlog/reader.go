package canlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/cyclopcam/logs"
)

// ReadFile parses a CSV CAN capture, shifting every timestamp back by offset
// so that time zero is the start of the recording. Records that land before
// time zero are dropped. The first line of the file is a column header.
//
// Captures that include more than one bus interleave non-monotonically during
// busy periods, so the result is stably re-sorted by timestamp before return.
// Any malformed field aborts the whole read.
func ReadFile(log logs.Log, path string, offset time.Duration) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CAN log %v: %w", path, err)
	}
	defer f.Close()
	msgs, err := Read(log, f, offset)
	if err != nil {
		return nil, fmt.Errorf("CAN log %v: %w", path, err)
	}
	return msgs, nil
}

// Read is ReadFile for an already-open stream.
func Read(log logs.Log, r io.Reader, offset time.Duration) ([]Message, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // variable number of data byte fields
	cr.TrimLeadingSpace = true

	var msgs []Message
	dropped := 0
	for line := 1; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %v: %w", line, err)
		}
		if line == 1 {
			// column header
			continue
		}
		msg, err := parseRecord(fields, offset)
		if err != nil {
			return nil, fmt.Errorf("line %v: %w", line, err)
		}
		if msg.Timestamp < 0 {
			// Before the video started. Dropping these is a policy choice:
			// the alternative would be shifting the recording start earlier
			// and padding with empty video.
			dropped++
			continue
		}
		msgs = append(msgs, msg)
	}
	if dropped > 0 {
		log.Warnf("Dropped %v CAN messages from before 0:00.000 in the recording", dropped)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
	return msgs, nil
}
