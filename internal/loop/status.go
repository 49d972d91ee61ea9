package loop

import (
	"github.com/clambin/weather-display/internal/failure"
	"github.com/clambin/weather-display/internal/reading"
	"github.com/clambin/weather-display/internal/render"
	"log/slog"
	"time"
)

// OutcomeKind says why a run of the loop ended.
type OutcomeKind int

const (
	// Stopped means the user pressed the exit buttons.
	Stopped OutcomeKind = iota
	// Canceled means the run's context was canceled.
	Canceled
	// Faulted means the loop hit an error it could not classify.
	Faulted
)

func (k OutcomeKind) String() string {
	switch k {
	case Stopped:
		return "stopped"
	case Canceled:
		return "canceled"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Run. Fault is only set for Faulted outcomes.
type Outcome struct {
	Kind  OutcomeKind
	Fault error
}

// Status describes the result of one tick.
type Status struct {
	Sensor string           `json:"sensor"`
	Code   reading.ErrorCode `json:"code"`
	// Reading is only set if the tick produced a valid reading.
	Reading   *reading.Reading `json:"reading,omitempty"`
	Failures  failure.State    `json:"failures"`
	Result    render.Result    `json:"display"`
	Timestamp time.Time        `json:"timestamp"`
}

func (s Status) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("sensor", s.Sensor),
		slog.String("code", s.Code.String()),
		slog.Any("failures", s.Failures),
		slog.String("display", s.Result.String()),
	}
	if s.Reading != nil {
		attrs = append(attrs, slog.Any("reading", *s.Reading))
	}
	return slog.GroupValue(attrs...)
}
