package collector

import (
	"context"
	"github.com/clambin/weather-display/internal/loop"
	"github.com/clambin/weather-display/internal/reading"
	"github.com/clambin/weather-display/internal/render"
	"github.com/clambin/weather-display/pkg/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
	"sync"
)

var (
	temperatureCelsius = prometheus.NewDesc(
		prometheus.BuildFQName("weather", "sensor", "temperature_celsius"),
		"Last valid temperature reading in degrees celsius",
		[]string{"sensor"},
		nil,
	)
	humidityPercentage = prometheus.NewDesc(
		prometheus.BuildFQName("weather", "sensor", "humidity_percentage"),
		"Last valid humidity reading in percentage (0-100)",
		[]string{"sensor"},
		nil,
	)
	readingAge = prometheus.NewDesc(
		prometheus.BuildFQName("weather", "sensor", "reading_age_seconds"),
		"Age of the last valid reading, as reported by the server",
		[]string{"sensor"},
		nil,
	)
	consecutiveFailures = prometheus.NewDesc(
		prometheus.BuildFQName("weather", "display", "consecutive_failures"),
		"Number of consecutive ticks the server could not be reached",
		[]string{"sensor"},
		nil,
	)
	warningActive = prometheus.NewDesc(
		prometheus.BuildFQName("weather", "display", "warning_active"),
		"1 if the display shows the server not responding warning",
		[]string{"sensor"},
		nil,
	)
)

// Collector exports the status of the control loop to Prometheus.
type Collector struct {
	Publisher  *pubsub.Publisher[loop.Status]
	Logger     *slog.Logger
	ticks      *prometheus.CounterVec
	refreshes  *prometheus.CounterVec
	lock       sync.RWMutex
	lastStatus *loop.Status
	reading    *reading.Reading
}

func New(p *pubsub.Publisher[loop.Status], logger *slog.Logger) *Collector {
	return &Collector{
		Publisher: p,
		Logger:    logger,
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather",
			Subsystem: "display",
			Name:      "ticks_total",
			Help:      "Number of polls of the sensor server, by result",
		}, []string{"sensor", "code"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather",
			Subsystem: "display",
			Name:      "refreshes_total",
			Help:      "Number of times a poll caused the panel to be refreshed",
		}, []string{"sensor"}),
	}
}

func (c *Collector) Run(ctx context.Context) error {
	c.Logger.Debug("started")
	defer c.Logger.Debug("stopped")

	ch := c.Publisher.Subscribe()
	defer c.Publisher.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case status := <-ch:
			c.process(status)
		}
	}
}

func (c *Collector) process(status loop.Status) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lastStatus = &status
	if status.Reading != nil {
		c.reading = status.Reading
	}
	// every code is exported from the first tick, so rates of rare codes start at zero
	for _, code := range reading.Codes {
		c.ticks.WithLabelValues(status.Sensor, code.String())
	}
	c.ticks.WithLabelValues(status.Sensor, status.Code.String()).Inc()
	if status.Result == render.Updated {
		c.refreshes.WithLabelValues(status.Sensor).Inc()
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- temperatureCelsius
	ch <- humidityPercentage
	ch <- readingAge
	ch <- consecutiveFailures
	ch <- warningActive
	c.ticks.Describe(ch)
	c.refreshes.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	c.ticks.Collect(ch)
	c.refreshes.Collect(ch)
	if c.lastStatus == nil {
		return
	}
	sensor := c.lastStatus.Sensor
	if c.reading != nil {
		ch <- prometheus.MustNewConstMetric(temperatureCelsius, prometheus.GaugeValue, c.reading.Temperature, sensor)
		ch <- prometheus.MustNewConstMetric(humidityPercentage, prometheus.GaugeValue, float64(c.reading.Humidity), sensor)
		ch <- prometheus.MustNewConstMetric(readingAge, prometheus.GaugeValue, float64(c.reading.Age), sensor)
	}
	ch <- prometheus.MustNewConstMetric(consecutiveFailures, prometheus.GaugeValue, float64(c.lastStatus.Failures.ConsecutiveFailures), sensor)
	var warning float64
	if c.lastStatus.Failures.WarningActive {
		warning = 1
	}
	ch <- prometheus.MustNewConstMetric(warningActive, prometheus.GaugeValue, warning, sensor)
}
