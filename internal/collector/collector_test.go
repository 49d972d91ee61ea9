package collector

import (
	"github.com/clambin/weather-display/internal/failure"
	"github.com/clambin/weather-display/internal/loop"
	"github.com/clambin/weather-display/internal/reading"
	"github.com/clambin/weather-display/internal/render"
	"github.com/clambin/weather-display/pkg/pubsub"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCollector(t *testing.T) {
	c := New(nil, slog.New(slog.DiscardHandler))

	c.process(loop.Status{
		Sensor:  "Outside",
		Code:    reading.OK,
		Reading: &reading.Reading{Temperature: 21.25, Humidity: 47, Age: 10},
		Result:  render.Updated,
	})
	c.process(loop.Status{
		Sensor:   "Outside",
		Code:     reading.ServerUnreachable,
		Failures: failure.State{ConsecutiveFailures: 5, WarningActive: true},
		Result:   render.Updated,
	})
	c.process(loop.Status{
		Sensor:   "Outside",
		Code:     reading.ServerUnreachable,
		Failures: failure.State{ConsecutiveFailures: 5, WarningActive: true},
	})

	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP weather_display_consecutive_failures Number of consecutive ticks the server could not be reached
# TYPE weather_display_consecutive_failures gauge
weather_display_consecutive_failures{sensor="Outside"} 5

# HELP weather_display_refreshes_total Number of times a poll caused the panel to be refreshed
# TYPE weather_display_refreshes_total counter
weather_display_refreshes_total{sensor="Outside"} 2

# HELP weather_display_ticks_total Number of polls of the sensor server, by result
# TYPE weather_display_ticks_total counter
weather_display_ticks_total{code="data_missing",sensor="Outside"} 0
weather_display_ticks_total{code="data_stale",sensor="Outside"} 0
weather_display_ticks_total{code="ok",sensor="Outside"} 1
weather_display_ticks_total{code="server_unreachable",sensor="Outside"} 2

# HELP weather_display_warning_active 1 if the display shows the server not responding warning
# TYPE weather_display_warning_active gauge
weather_display_warning_active{sensor="Outside"} 1

# HELP weather_sensor_humidity_percentage Last valid humidity reading in percentage (0-100)
# TYPE weather_sensor_humidity_percentage gauge
weather_sensor_humidity_percentage{sensor="Outside"} 47

# HELP weather_sensor_reading_age_seconds Age of the last valid reading, as reported by the server
# TYPE weather_sensor_reading_age_seconds gauge
weather_sensor_reading_age_seconds{sensor="Outside"} 10

# HELP weather_sensor_temperature_celsius Last valid temperature reading in degrees celsius
# TYPE weather_sensor_temperature_celsius gauge
weather_sensor_temperature_celsius{sensor="Outside"} 21.25
`)))
}

func TestCollector_NoUpdate(t *testing.T) {
	c := New(nil, slog.New(slog.DiscardHandler))
	assert.Zero(t, testutil.CollectAndCount(c))
}

func TestCollector_Run(t *testing.T) {
	p := pubsub.New[loop.Status](slog.New(slog.DiscardHandler))
	c := New(p, slog.New(slog.DiscardHandler))
	go func() {
		_ = c.Run(t.Context())
	}()

	assert.Eventually(t, func() bool { return p.Subscribers() == 1 }, time.Second, time.Millisecond)
	p.Publish(loop.Status{Sensor: "Outside", Code: reading.DataMissing})
	assert.Eventually(t, func() bool {
		return testutil.CollectAndCount(c, "weather_display_ticks_total") == len(reading.Codes)
	}, time.Second, time.Millisecond)
}
