// Package failure decides when a fetch failure should be shown on the panel.
package failure

import (
	"github.com/clambin/weather-display/internal/reading"
	"log/slog"
	"time"
)

const (
	MsgServerUnreachable = "Server not responding"
	MsgDataMissing       = "No/incomplete data"
	MsgDataStale         = "Sensor data expired"
	MsgUnknown           = "Error"
)

// Message returns the diagnostic text for an error code.
func Message(code reading.ErrorCode) string {
	switch code {
	case reading.ServerUnreachable:
		return MsgServerUnreachable
	case reading.DataMissing:
		return MsgDataMissing
	case reading.DataStale:
		return MsgDataStale
	default:
		return MsgUnknown
	}
}

// Threshold returns the number of consecutive failures, polled every interval, that add up to warnAfter. It is at least one.
func Threshold(warnAfter, interval time.Duration) int {
	if interval <= 0 {
		return 1
	}
	w := int((warnAfter + interval - 1) / interval)
	return max(w, 1)
}

// State is the failure counter and whether the "server not responding" warning is showing.
type State struct {
	ConsecutiveFailures int  `json:"consecutiveFailures"`
	WarningActive       bool `json:"warningActive"`
}

func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("failures", s.ConsecutiveFailures),
		slog.Bool("warning", s.WarningActive),
	)
}

// Policy tracks consecutive ServerUnreachable failures. Only connectivity loss is debounced:
// missing or stale data is reported straight away and does not count towards the threshold.
type Policy struct {
	Threshold int
	state     State
}

func New(threshold int) *Policy {
	return &Policy{Threshold: max(threshold, 1)}
}

// Decision tells the caller whether to show a diagnostic.
type Decision struct {
	Show    bool
	Message string
}

// Update feeds the outcome of one fetch to the policy.
func (p *Policy) Update(code reading.ErrorCode) Decision {
	switch code {
	case reading.OK:
		p.state = State{}
		return Decision{}
	case reading.ServerUnreachable:
		if p.state.ConsecutiveFailures >= p.Threshold {
			return Decision{}
		}
		p.state.ConsecutiveFailures++
		if p.state.ConsecutiveFailures == p.Threshold {
			p.state.WarningActive = true
			return Decision{Show: true, Message: Message(code)}
		}
		return Decision{}
	default:
		return Decision{Show: true, Message: Message(code)}
	}
}

// State returns the current counter and warning state.
func (p *Policy) State() State {
	return p.state
}
