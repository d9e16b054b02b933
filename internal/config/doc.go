// Package config provides configuration management for the quota
// watcher.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration. Command line flags are layered on top by the cli
// package after Load returns.
//
// Configuration sources (in order of precedence):
//  1. Command line flags (applied by the caller)
//  2. Environment variables
//  3. YAML configuration file
//  4. Default values (lowest priority)
//
// Supported environment variables:
//   - AZQUOTA_SUBSCRIPTIONS: Comma-separated subscription IDs or id:name pairs
//   - AZQUOTA_PROVIDERS: Comma-separated resource provider namespaces
//   - AZQUOTA_REGIONS: Comma-separated region names
//   - AZQUOTA_THRESHOLD: Reporting threshold percentage
//   - AZQUOTA_MANAGEMENT_URL: Management API base URL
//   - AZQUOTA_REFRESH_INTERVAL: Serve-mode refresh interval in seconds (minimum: 60)
//   - AZQUOTA_HTTP_PORT: HTTP server port (1-65535)
//   - AZQUOTA_API_TIMEOUT: Per-request API timeout in seconds
//   - AZQUOTA_LOG_LEVEL: Log level (debug, info, warn, error)
//   - AZQUOTA_LOG_FORMAT: Log output format (text, json)
//
// The threshold key is a pointer internally so that an explicit
// "threshold: 0" in the file survives defaulting; zero means every
// resource with any usage is reported.
//
// Example configuration file (config.yaml):
//
//	subscriptions:
//	  - id: "sub-123"
//	    name: "Production"
//	  - id: "sub-456"
//	    name: "Development"
//
//	providers: ["Microsoft.Storage", "Microsoft.Network", "Microsoft.Compute"]
//	regions: ["eastus", "centralus", "eastus2"]
//	threshold: 80
//
//	refresh_interval: 3600  # 1 hour, serve mode only
//	http_port: 8080
//	log_level: "info"
//	log_format: "text"
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatalf("Failed to load config: %v", err)
//	}
//
//	fmt.Printf("Scanning %d subscriptions\n", len(cfg.Subscriptions))
//	fmt.Printf("Threshold: %.0f%%\n", *cfg.Threshold)
package config
