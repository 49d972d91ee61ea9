// Package run implements the command that runs the display.
package run

import (
	"context"
	"fmt"
	"github.com/clambin/weather-display/internal/app"
	"github.com/clambin/weather-display/internal/buttons"
	"github.com/clambin/weather-display/internal/configuration"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var Cmd = cobra.Command{
	Use:   "run",
	Short: "run the weather display",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configuration.FromViper(viper.GetViper())
		if err != nil {
			return fmt.Errorf("configuration: %w", err)
		}
		version := cmd.Root().Version
		logger := slog.Default()
		logger.Info("weather-display starting", "version", version)
		defer logger.Info("weather-display stopped")

		a, err := app.New(cfg, version, prometheus.DefaultRegisterer, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer cancel()
		go pressExitOnInterrupt(ctx, a.Buttons, logger)

		return a.Run(ctx)
	},
}

// pressExitOnInterrupt holds the exit buttons when the process receives SIGINT, so the display stops the same way it does on the device.
func pressExitOnInterrupt(ctx context.Context, panel *buttons.Panel, logger *slog.Logger) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	select {
	case <-ctx.Done():
	case <-interrupt:
		logger.Info("interrupt received. stopping")
		panel.Press(buttons.ExitCombination...)
	}
}
