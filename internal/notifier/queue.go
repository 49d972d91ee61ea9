package notifier

import (
	"context"
	"log/slog"
	"time"
)

// Queue delivers notifications in the background, so callers never wait for a slow Notifier.
// Messages are dropped when the queue is full.
type Queue struct {
	Notifier Notifier
	// Timeout bounds the delivery of one message.
	Timeout time.Duration
	Logger  *slog.Logger
	queue   chan string
}

var _ Notifier = &Queue{}

func NewQueue(n Notifier, size int, timeout time.Duration, logger *slog.Logger) *Queue {
	return &Queue{
		Notifier: n,
		Timeout:  timeout,
		Logger:   logger,
		queue:    make(chan string, size),
	}
}

// Notify queues msg for delivery. It does not block.
func (q *Queue) Notify(_ context.Context, msg string) {
	select {
	case q.queue <- msg:
	default:
		q.Logger.Warn("notification queue full. dropping message", "msg", msg)
	}
}

// Run delivers queued messages until ctx is canceled.
func (q *Queue) Run(ctx context.Context) error {
	q.Logger.Debug("started")
	defer q.Logger.Debug("stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-q.queue:
			q.deliver(ctx, msg)
		}
	}
}

func (q *Queue) deliver(ctx context.Context, msg string) {
	ctx, cancel := context.WithTimeout(ctx, q.Timeout)
	defer cancel()
	q.Notifier.Notify(ctx, msg)
}
