package health

import (
	"context"
	"encoding/json"
	"github.com/clambin/weather-display/internal/loop"
	"github.com/clambin/weather-display/pkg/pubsub"
	"log/slog"
	"net/http"
	"sync"
)

// Health reports the status of the last tick of the control loop.
type Health struct {
	Publisher *pubsub.Publisher[loop.Status]
	logger    *slog.Logger
	status    loop.Status
	updated   bool
	lock      sync.RWMutex
}

func New(p *pubsub.Publisher[loop.Status], logger *slog.Logger) *Health {
	return &Health{
		Publisher: p,
		logger:    logger,
	}
}

func (h *Health) Run(ctx context.Context) error {
	h.logger.Debug("started")
	defer h.logger.Debug("stopped")

	ch := h.Publisher.Subscribe()
	defer h.Publisher.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case status := <-ch:
			h.lock.Lock()
			h.status = status
			h.updated = true
			h.lock.Unlock()
		}
	}
}

// ServeHTTP returns the last status. It fails until the first tick has completed, or while the "server not responding" warning is shown.
func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if !h.updated {
		http.Error(w, "no update yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.status.Failures.WarningActive {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(h.status); err != nil {
		h.logger.Error("failed to encode status", "err", err)
	}
}
