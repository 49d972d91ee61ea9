// Package supervisor keeps the control loop running: when the loop fails, it shows the error, waits and starts the loop again.
package supervisor

import (
	"context"
	"github.com/clambin/weather-display/internal/loop"
	"github.com/clambin/weather-display/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
	"strings"
	"time"
)

// Runner runs the control loop once.
type Runner interface {
	Run(ctx context.Context) loop.Outcome
}

// RestartNotice is the first line of the screen shown after a fault.
const RestartNotice = "Restarting after error:"

// maxLineLength is the number of characters of the fault that fit on one line of the panel.
const maxLineLength = 40

// maxFaultLines limits how much of the fault is shown.
const maxFaultLines = 4

const notifyTimeout = 5 * time.Second

type Supervisor struct {
	Runner       Runner
	Input        loop.Input
	Model        *render.Model
	Notifier     loop.Notifier
	RestartDelay time.Duration
	// Restarts, if set, is incremented every time the loop is restarted after a fault.
	Restarts prometheus.Counter
	Logger   *slog.Logger
}

// Run starts the loop and restarts it after every fault. It returns when the user stops the loop,
// when the exit buttons are held before a (re)start, or when ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) error {
	s.Logger.Debug("started")
	defer s.Logger.Debug("stopped")

	for {
		if s.Input.ExitRequested() {
			s.Logger.Info("exit requested. not starting")
			return nil
		}

		outcome := s.Runner.Run(ctx)
		switch outcome.Kind {
		case loop.Stopped:
			s.Logger.Info("loop stopped by user")
			return nil
		case loop.Canceled:
			return nil
		}

		s.Logger.Error("loop failed. restarting", "err", outcome.Fault, "delay", s.RestartDelay)
		s.showFault(ctx, outcome.Fault)
		if s.Restarts != nil {
			s.Restarts.Inc()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.RestartDelay):
		}
	}
}

func (s *Supervisor) showFault(ctx context.Context, fault error) {
	description := "unknown error"
	if fault != nil {
		description = fault.Error()
	}
	s.Model.Clear()
	s.Model.AddMessage(RestartNotice)
	for _, line := range wrap(description, maxLineLength, maxFaultLines) {
		s.Model.AddMessage(line)
	}
	if _, err := s.Model.Commit(); err != nil {
		s.Logger.Warn("failed to show fault", "err", err)
	}
	if s.Notifier != nil {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		s.Notifier.Notify(ctx, RestartNotice+" "+description)
	}
}

// wrap splits text into at most maxLines lines of at most width characters, breaking on spaces where possible.
func wrap(text string, width int, maxLines int) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
