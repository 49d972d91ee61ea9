package notifier

import (
	"context"
	"log/slog"
)

type SLogNotifier struct {
	Logger *slog.Logger
}

var _ Notifier = &SLogNotifier{}

func (s SLogNotifier) Notify(_ context.Context, msg string) {
	s.Logger.Warn(msg)
}
