package cmd

import (
	"errors"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/weather-display/internal/cmd/config"
	"github.com/clambin/weather-display/internal/cmd/run"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"os"
	"time"
)

var (
	configFilename string
	RootCmd        = cobra.Command{
		Use:   "weather-display",
		Short: "Shows the latest reading of a weather sensor on an e-paper panel",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			charmer.SetJSONLogger(cmd, viper.GetBool("debug"))
		},
	}
)

var args = charmer.Arguments{
	"debug":                   charmer.Argument{Default: false, Help: "Log debug messages"},
	"sensor.url":              charmer.Argument{Default: "", Help: "URL of the sensor server"},
	"sensor.name":             charmer.Argument{Default: "Outside", Help: "Name of the sensor to display"},
	"sensor.maxAge":           charmer.Argument{Default: 10 * time.Minute, Help: "Oldest reading that is still shown"},
	"sensor.timeout":          charmer.Argument{Default: 10 * time.Second, Help: "Timeout when contacting the sensor server"},
	"display.interval":        charmer.Argument{Default: time.Minute, Help: "Time between two readings"},
	"display.warnAfter":       charmer.Argument{Default: 5 * time.Minute, Help: "Show a warning after failing for this long"},
	"display.connectRetry":    charmer.Argument{Default: time.Second, Help: "Time between two network connection checks"},
	"display.width":           charmer.Argument{Default: 296, Help: "Panel width in pixels"},
	"display.height":          charmer.Argument{Default: 128, Help: "Panel height in pixels"},
	"supervisor.restartDelay": charmer.Argument{Default: 10 * time.Second, Help: "Delay before restarting after an error"},
	"health.addr":             charmer.Argument{Default: ":8080", Help: "Address of /health and /buttons endpoints"},
	"exporter.addr":           charmer.Argument{Default: ":9090", Help: "Address of Prometheus exporter"},
	"slack.token":             charmer.Argument{Default: "", Help: "Slack token"},
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file")
	if err := charmer.SetPersistentFlags(&RootCmd, viper.GetViper(), args); err != nil {
		panic("failed to set flags: " + err.Error())
	}
	RootCmd.AddCommand(&run.Cmd, &config.Cmd)
}

func initConfig() {
	if configFilename != "" {
		viper.SetConfigFile(configFilename)
	} else {
		viper.AddConfigPath("/etc/weather-display/")
		viper.AddConfigPath("$HOME/.weather-display")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("WEATHER_DISPLAY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFilename != "" || !errors.As(err, &notFound) {
			slog.Error("failed to read config file", "err", err)
			os.Exit(1)
		}
	}
}
