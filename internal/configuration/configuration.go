// Package configuration holds the settings of weather-display.
package configuration

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"net/url"
	"time"
)

type Configuration struct {
	Debug      bool                    `yaml:"debug"`
	Sensor     SensorConfiguration     `yaml:"sensor"`
	Display    DisplayConfiguration    `yaml:"display"`
	Supervisor SupervisorConfiguration `yaml:"supervisor"`
	Health     ServerConfiguration     `yaml:"health"`
	Exporter   ServerConfiguration     `yaml:"exporter"`
	Slack      SlackConfiguration      `yaml:"slack"`
}

// SensorConfiguration tells where to find the sensor's readings.
type SensorConfiguration struct {
	URL     string        `yaml:"url"`
	Name    string        `yaml:"name"`
	MaxAge  time.Duration `yaml:"maxAge"`
	Timeout time.Duration `yaml:"timeout"`
}

type DisplayConfiguration struct {
	Interval     time.Duration `yaml:"interval"`
	WarnAfter    time.Duration `yaml:"warnAfter"`
	ConnectRetry time.Duration `yaml:"connectRetry"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
}

type SupervisorConfiguration struct {
	RestartDelay time.Duration `yaml:"restartDelay"`
}

type ServerConfiguration struct {
	Addr string `yaml:"addr"`
}

type SlackConfiguration struct {
	Token string `yaml:"token"`
}

// FromViper reads the configuration from v and validates it.
func FromViper(v *viper.Viper) (Configuration, error) {
	cfg := Configuration{
		Debug: v.GetBool("debug"),
		Sensor: SensorConfiguration{
			URL:     v.GetString("sensor.url"),
			Name:    v.GetString("sensor.name"),
			MaxAge:  v.GetDuration("sensor.maxAge"),
			Timeout: v.GetDuration("sensor.timeout"),
		},
		Display: DisplayConfiguration{
			Interval:     v.GetDuration("display.interval"),
			WarnAfter:    v.GetDuration("display.warnAfter"),
			ConnectRetry: v.GetDuration("display.connectRetry"),
			Width:        v.GetInt("display.width"),
			Height:       v.GetInt("display.height"),
		},
		Supervisor: SupervisorConfiguration{
			RestartDelay: v.GetDuration("supervisor.restartDelay"),
		},
		Health:   ServerConfiguration{Addr: v.GetString("health.addr")},
		Exporter: ServerConfiguration{Addr: v.GetString("exporter.addr")},
		Slack:    SlackConfiguration{Token: v.GetString("slack.token")},
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration can be used to run the display.
func (c Configuration) Validate() error {
	var errs []error
	if c.Sensor.URL == "" {
		errs = append(errs, errors.New("sensor.url: missing"))
	} else if u, err := url.Parse(c.Sensor.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("sensor.url: invalid url %q", c.Sensor.URL))
	}
	if c.Sensor.Name == "" {
		errs = append(errs, errors.New("sensor.name: missing"))
	}
	if c.Sensor.MaxAge < time.Second {
		errs = append(errs, errors.New("sensor.maxAge: must be at least 1s"))
	}
	if c.Display.Interval <= 0 {
		errs = append(errs, errors.New("display.interval: must be positive"))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, errors.New("display: width and height must be positive"))
	}
	if c.Supervisor.RestartDelay < 0 {
		errs = append(errs, errors.New("supervisor.restartDelay: cannot be negative"))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy of the configuration with all secrets masked.
func (c Configuration) Redacted() Configuration {
	if c.Slack.Token != "" {
		c.Slack.Token = "********"
	}
	return c
}
