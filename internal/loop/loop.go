// Package loop implements the control loop: connect to the network, then poll the sensor server forever,
// showing the latest reading or a diagnostic on the panel.
package loop

import (
	"context"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/clambin/weather-display/internal/failure"
	"github.com/clambin/weather-display/internal/reading"
	"github.com/clambin/weather-display/internal/render"
	"github.com/clambin/weather-display/pkg/pubsub"
	"log/slog"
	"time"
)

// Link brings up the network connection.
type Link interface {
	// Connect starts connecting. It does not wait for the link to come up.
	Connect(ctx context.Context) error
	IsConnected() bool
}

// Input reports whether the user asked the device to stop.
type Input interface {
	ExitRequested() bool
}

// Notifier receives every diagnostic that is shown on the panel.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

var ErrNotConnected = errors.New("network not connected")

// Configuration holds the loop's settings.
type Configuration struct {
	Version      string
	URL          string
	Sensor       string
	Interval     time.Duration
	MaxAge       time.Duration
	WarnAfter    time.Duration
	ConnectRetry time.Duration
	// NotifyTimeout bounds the time the Notifier may take to deliver one diagnostic. Defaults to 5s.
	NotifyTimeout time.Duration
}

const defaultNotifyTimeout = 5 * time.Second

// Loop runs the device. A Loop is not safe for concurrent use: Run must not be called from multiple goroutines.
type Loop struct {
	Configuration
	Link      Link
	Transport reading.Transport
	Input     Input
	Model     *render.Model
	Notifier  Notifier
	Updates   *pubsub.Publisher[Status]
	Logger    *slog.Logger

	policy *failure.Policy
}

// Run executes the loop from boot until the user stops it or ctx is canceled.
// Fetch and data errors are handled by the loop itself; anything else ends the run with a Faulted outcome.
func (l *Loop) Run(ctx context.Context) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Kind: Faulted, Fault: fmt.Errorf("panic: %v", r)}
		}
	}()

	l.policy = failure.New(failure.Threshold(l.WarnAfter, l.Interval))

	if err := l.boot(); err != nil {
		return Outcome{Kind: Faulted, Fault: err}
	}
	if err := l.connect(ctx); err != nil {
		if ctx.Err() != nil {
			return Outcome{Kind: Canceled}
		}
		return Outcome{Kind: Faulted, Fault: err}
	}
	return l.poll(ctx)
}

func (l *Loop) banner() string {
	return "WEATHER DISPLAY " + l.Version
}

func (l *Loop) boot() error {
	l.Logger.Info("booting", "version", l.Version)
	l.Model.Clear()
	l.Model.AddMessage(l.banner())
	l.Model.AddMessage("Connecting to network...")
	_, err := l.Model.Commit()
	return err
}

func (l *Loop) connect(ctx context.Context) error {
	if err := l.Link.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	var attempt int
	var renderErr error
	waitForLink := func() error {
		if renderErr != nil {
			return backoff.Permanent(renderErr)
		}
		if !l.Link.IsConnected() {
			return ErrNotConnected
		}
		return nil
	}
	onRetry := func(_ error, _ time.Duration) {
		attempt++
		l.Logger.Debug("waiting for network", "attempt", attempt)
		l.Model.Clear()
		l.Model.AddMessage(l.banner())
		l.Model.AddMessage(fmt.Sprintf("Connecting to network (attempt %d)", attempt))
		_, renderErr = l.Model.Commit()
	}
	retry := l.ConnectRetry
	if retry <= 0 {
		retry = time.Second
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(retry), ctx)
	if err := backoff.RetryNotify(waitForLink, b, onRetry); err != nil {
		return err
	}
	l.Logger.Info("network connected", "attempts", attempt+1)

	l.Model.Clear()
	l.Model.AddMessage(l.banner())
	l.Model.AddMessage("Connected")
	l.Model.AddMessage("Fetching weather...")
	_, err := l.Model.Commit()
	return err
}

func (l *Loop) poll(ctx context.Context) Outcome {
	l.Logger.Debug("polling started", "interval", l.Interval)
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		if l.Input.ExitRequested() {
			return l.stop()
		}
		if err := l.tick(ctx); err != nil {
			return Outcome{Kind: Faulted, Fault: err}
		}
		select {
		case <-ctx.Done():
			return Outcome{Kind: Canceled}
		case <-ticker.C:
		}
	}
}

func (l *Loop) stop() Outcome {
	l.Logger.Info("stop requested")
	l.Model.Clear()
	l.Model.AddMessage("Stopped")
	if _, err := l.Model.Commit(); err != nil {
		l.Logger.Warn("failed to show stop message", "err", err)
	}
	return Outcome{Kind: Stopped}
}

func (l *Loop) tick(ctx context.Context) error {
	r, code, err := reading.Fetch(ctx, l.Transport, l.URL, l.Sensor)
	if err != nil {
		l.Logger.Warn("failed to reach sensor server", "err", err)
	}
	if code == reading.OK {
		code = reading.CheckAge(r, int(l.MaxAge/time.Second))
	}
	decision := l.policy.Update(code)

	status := Status{
		Sensor:    l.Sensor,
		Code:      code,
		Failures:  l.policy.State(),
		Timestamp: time.Now(),
	}

	switch {
	case code == reading.OK:
		status.Reading = &r
		l.Model.Clear()
		l.Model.SetLocation(l.Sensor)
		l.Model.SetTime(r.Time)
		l.Model.SetTemperature(r.Temperature)
		l.Model.SetHumidity(r.Humidity)
		if status.Result, err = l.Model.Commit(); err != nil {
			return err
		}
	case decision.Show:
		l.Model.Clear()
		l.Model.AddMessage(decision.Message)
		if status.Result, err = l.Model.Commit(); err != nil {
			return err
		}
		if status.Result == render.Updated {
			l.notify(ctx, l.Sensor+": "+decision.Message)
		}
	}

	l.Logger.Debug("tick", "status", status)
	if l.Updates != nil {
		l.Updates.Publish(status)
	}
	return nil
}

func (l *Loop) notify(ctx context.Context, msg string) {
	if l.Notifier == nil {
		return
	}
	timeout := l.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	l.Notifier.Notify(ctx, msg)
}
