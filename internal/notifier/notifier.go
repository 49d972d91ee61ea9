// Package notifier forwards the diagnostics shown on the panel to other channels.
package notifier

import (
	"context"
)

type Notifier interface {
	Notify(ctx context.Context, msg string)
}

type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, msg string) {
	for _, l := range n {
		l.Notify(ctx, msg)
	}
}
