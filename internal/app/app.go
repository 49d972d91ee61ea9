// Package app wires the control loop, its host drivers and the supporting servers into one runnable application.
package app

import (
	"context"
	"fmt"
	"github.com/clambin/go-common/taskmanager"
	"github.com/clambin/go-common/taskmanager/httpserver"
	promserver "github.com/clambin/go-common/taskmanager/prometheus"
	"github.com/clambin/weather-display/internal/buttons"
	"github.com/clambin/weather-display/internal/collector"
	"github.com/clambin/weather-display/internal/configuration"
	"github.com/clambin/weather-display/internal/display"
	"github.com/clambin/weather-display/internal/fetcher"
	"github.com/clambin/weather-display/internal/health"
	"github.com/clambin/weather-display/internal/loop"
	"github.com/clambin/weather-display/internal/network"
	"github.com/clambin/weather-display/internal/notifier"
	"github.com/clambin/weather-display/internal/render"
	"github.com/clambin/weather-display/internal/supervisor"
	"github.com/clambin/weather-display/pkg/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	notificationQueueSize = 10
	notificationTimeout   = 30 * time.Second
)

type App struct {
	Buttons    *buttons.Panel
	Supervisor *supervisor.Supervisor
	tasks      []taskmanager.Task
}

// New builds the application. The panel is printed to out.
func New(cfg configuration.Configuration, version string, registry prometheus.Registerer, out io.Writer, logger *slog.Logger) (*App, error) {
	link, err := network.New(cfg.Sensor.URL, cfg.Sensor.Timeout, logger.With("component", "network"))
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	metrics := fetcher.NewMetrics("weather", "fetcher")
	restarts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "weather",
		Subsystem: "display",
		Name:      "restarts_total",
		Help:      "Number of times the control loop was restarted after an error",
	})
	updates := pubsub.New[loop.Status](logger.With("component", "pubsub"))
	coll := collector.New(updates, logger.With("component", "collector"))
	if registry != nil {
		registry.MustRegister(metrics, restarts, coll)
	}

	panel := buttons.New(logger.With("component", "buttons"))
	model := render.New(display.New(cfg.Display.Width, cfg.Display.Height, out))
	n := notifier.NewQueue(makeNotifiers(cfg, version, logger), notificationQueueSize, notificationTimeout, logger.With("component", "notifications"))

	l := &loop.Loop{
		Configuration: loop.Configuration{
			Version:      version,
			URL:          cfg.Sensor.URL,
			Sensor:       cfg.Sensor.Name,
			Interval:     cfg.Display.Interval,
			MaxAge:       cfg.Sensor.MaxAge,
			WarnAfter:    cfg.Display.WarnAfter,
			ConnectRetry: cfg.Display.ConnectRetry,
		},
		Link:      link,
		Transport: fetcher.New(cfg.Sensor.Timeout, metrics),
		Input:     panel,
		Model:     model,
		Notifier:  n,
		Updates:   updates,
		Logger:    logger.With("component", "loop"),
	}

	s := &supervisor.Supervisor{
		Runner:       l,
		Input:        panel,
		Model:        model,
		Notifier:     n,
		RestartDelay: cfg.Supervisor.RestartDelay,
		Restarts:     restarts,
		Logger:       logger.With("component", "supervisor"),
	}

	return &App{
		Buttons:    panel,
		Supervisor: s,
		tasks:      makeTasks(cfg, updates, coll, panel, n, logger),
	}, nil
}

func makeNotifiers(cfg configuration.Configuration, version string, logger *slog.Logger) notifier.Notifiers {
	n := notifier.Notifiers{
		&notifier.SLogNotifier{Logger: logger.With("component", "notifier")},
	}
	if cfg.Slack.Token != "" {
		n = append(n, &notifier.SlackNotifier{
			SlackSender: slack.New(cfg.Slack.Token),
			Title:       "weather-display " + version,
			Logger:      logger.With("component", "slack"),
		})
	}
	return n
}

func makeTasks(cfg configuration.Configuration, updates *pubsub.Publisher[loop.Status], coll *collector.Collector, panel *buttons.Panel, n *notifier.Queue, l *slog.Logger) []taskmanager.Task {
	var tasks []taskmanager.Task

	// Notifications
	tasks = append(tasks, n)

	// Collector
	tasks = append(tasks, coll)

	// Health Endpoint
	h := health.New(updates, l.With("component", "health"))
	tasks = append(tasks, h)
	if cfg.Health.Addr != "" {
		r := http.NewServeMux()
		r.Handle("/health", h)
		r.Handle("/buttons", panel)
		tasks = append(tasks, httpserver.New(cfg.Health.Addr, r))
	}

	// Prometheus Server
	if cfg.Exporter.Addr != "" {
		tasks = append(tasks, promserver.New(promserver.WithAddr(cfg.Exporter.Addr)))
	}

	return tasks
}

// Run starts all tasks and the supervisor. It returns when the supervisor stops, or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.Supervisor.Run(ctx)
	})
	for _, task := range a.tasks {
		g.Go(func() error { return task.Run(ctx) })
	}
	return g.Wait()
}
