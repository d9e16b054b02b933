package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/zgpcy/azure-quota-watch/internal/azure"
	"github.com/zgpcy/azure-quota-watch/internal/collector"
	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/scan"
	"github.com/zgpcy/azure-quota-watch/internal/server"
	"github.com/zgpcy/azure-quota-watch/internal/version"
)

// defaultShutdownTimeout is the maximum time to wait for graceful shutdown
const defaultShutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Prometheus exporter with periodic background scans",
	Long: `Serve starts an HTTP server exposing the reconciled quota snapshot as
Prometheus metrics on /metrics, with a status page on / and health and
readiness probes on /health and /ready. Quota data is rescanned in the
background on the configured interval.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", config.DefaultHTTPPort, "HTTP listen port")
	serveCmd.Flags().Int("refresh-interval", config.DefaultRefreshInterval, "seconds between background scans")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.HTTPPort, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("refresh-interval") {
		cfg.RefreshInterval, _ = cmd.Flags().GetInt("refresh-interval")
	}

	if len(cfg.Subscriptions) == 0 {
		return fmt.Errorf("no subscriptions configured: set subscriptions in the config file or AZQUOTA_SUBSCRIPTIONS")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log := newLogger(cfg)
	log.Info("Azure Quota Watch starting",
		"version", version.Version,
		"config_path", cfgFile)

	log.Info("Configuration loaded successfully",
		"subscriptions", len(cfg.Subscriptions),
		"providers", len(cfg.Providers),
		"regions", len(cfg.Regions),
		"threshold", *cfg.Threshold,
		"refresh_interval_seconds", cfg.RefreshInterval,
		"http_port", cfg.HTTPPort,
		"api_timeout_seconds", cfg.APITimeout)

	// Create Azure credential and quota client
	log.Info("Initializing Azure quota client")
	cred, err := azure.NewCredential(cfg)
	if err != nil {
		return err
	}
	client := azure.NewClient(cfg, log)
	runner := scan.NewRunner(client, cred, cfg, log, nil)

	// Create quota collector
	log.Info("Creating Prometheus collector")
	quotaCollector := collector.NewQuotaCollector(runner, cfg, log)

	// Register collector with Prometheus
	if err := prometheus.Register(quotaCollector); err != nil {
		return fmt.Errorf("failed to register collector: %w", err)
	}

	// Register Go runtime metrics (memory, goroutines, GC stats)
	if err := prometheus.Register(prometheus.NewGoCollector()); err != nil {
		log.Warn("Failed to register Go collector", "error", err)
	}

	// Register process metrics (CPU, memory, file descriptors)
	if err := prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{})); err != nil {
		log.Warn("Failed to register process collector", "error", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Start background scans
	log.Info("Starting background quota scans")
	quotaCollector.StartBackgroundRefresh(ctx)

	// Create and start HTTP server
	log.Info("Creating HTTP server", "port", cfg.HTTPPort)
	srv := server.NewServer(cfg, quotaCollector, log)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		log.Info("Received shutdown signal, starting graceful shutdown", "signal", sig.String())

		// Cancel background scans
		cancel()

		// Shutdown server with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}

		log.Info("Server stopped gracefully")
	}
	return nil
}
