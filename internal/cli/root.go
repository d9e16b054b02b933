package cli

import (
	"github.com/spf13/cobra"
	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/logger"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "quotawatch",
	Short: "Azure Quota Watch - usage versus quota reporting for Azure subscriptions",
	Long: `Azure Quota Watch queries the Microsoft.Quota API for each configured
subscription, provider and region, reconciles current usage against the
quota limits, and warns about resources nearing their limit.

It runs either as a one-shot check for scripts and CI, or as a
long-running Prometheus exporter that rescans on an interval.`,
	SilenceUsage: true,
}

// Execute runs the CLI and returns the first error encountered.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default from config)")
}

// loadConfig loads the configuration and applies the persistent
// logging flags on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}
