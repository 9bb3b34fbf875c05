package canlog

import (
	"fmt"
	"time"
)

// GapThreshold is the CAN-to-CAN spacing above which we assume the logger
// lost messages.
const GapThreshold = 500 * time.Millisecond

// AlertTick is the re-emission stride used by ExpandAlerts. The viewer only
// renders an alert while a matching event is "current", so sparse alerts must
// be densified to stay visible.
const AlertTick = 100 * time.Millisecond

type AlertStatus int

const (
	AlertNormal AlertStatus = iota
	AlertUserPrompt
	AlertCritical
)

// Alert is a derived health event. Message is nil for a "clear" alert.
// Ordered by Timestamp.
type Alert struct {
	Timestamp time.Duration
	Status    AlertStatus
	Message   *string
}

// DetectGaps walks a time-sorted message sequence and brackets every gap
// larger than GapThreshold with a critical alert at the gap start and a clear
// alert at the gap end. Alerts come out in timestamp order.
func DetectGaps(msgs []Message) []Alert {
	var alerts []Alert
	for i := 1; i < len(msgs); i++ {
		gap := msgs[i].Timestamp - msgs[i-1].Timestamp
		if gap <= GapThreshold {
			continue
		}
		text := fmt.Sprintf("possible lost messages, gap of %.3fs", gap.Seconds())
		alerts = append(alerts,
			Alert{Timestamp: msgs[i-1].Timestamp, Status: AlertCritical, Message: &text},
			Alert{Timestamp: msgs[i].Timestamp, Status: AlertNormal},
		)
	}
	return alerts
}

// ExpandAlerts turns a sparse, time-sorted alert sequence into a dense one:
// every AlertTick over [first.Timestamp, last.Timestamp) re-emits a copy of
// the most recently active alert, timestamped at the tick.
func ExpandAlerts(alerts []Alert) []Alert {
	if len(alerts) == 0 {
		return nil
	}
	var out []Alert
	end := alerts[len(alerts)-1].Timestamp
	cur := 0
	for ts := alerts[0].Timestamp; ts < end; ts += AlertTick {
		for cur+1 < len(alerts) && alerts[cur+1].Timestamp <= ts {
			cur++
		}
		a := alerts[cur]
		a.Timestamp = ts
		out = append(out, a)
	}
	return out
}
