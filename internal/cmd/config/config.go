// Package config implements the command that prints the active configuration.
package config

import (
	"github.com/clambin/weather-display/internal/configuration"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var Cmd = cobra.Command{
	Use:   "config",
	Short: "show the configuration, with secrets redacted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configuration.FromViper(viper.GetViper())
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer func() { _ = enc.Close() }()
		if err2 := ShowConfig(cfg, enc); err2 != nil {
			return err2
		}
		return err
	},
}

type Encoder interface {
	Encode(any) error
}

// ShowConfig writes the configuration to e. Secrets are masked.
func ShowConfig(cfg configuration.Configuration, e Encoder) error {
	return e.Encode(cfg.Redacted())
}
