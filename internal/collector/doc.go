// Package collector implements a Prometheus collector for Azure quota metrics.
//
// This package provides a Prometheus-compatible collector that periodically
// scans Azure quota usage and exposes the reconciled snapshot as metrics.
// It implements the prometheus.Collector interface and manages background
// refresh cycles.
//
// The collector exposes the following metrics:
//   - azure_quota_usage: Current usage per resource with subscription, provider, region and resource labels
//   - azure_quota_limit: Quota limit per resource with the same label set
//   - azure_quota_usage_percent: Usage as a percentage of the limit (+Inf for zero-quota resources with usage)
//   - azure_quota_nearing_limit: 1 when the resource is above the warning threshold
//   - azure_quota_up: Health status of the last scan (1 = success, 0 = failure)
//   - azure_quota_scrape_duration_seconds: Duration of the last scan
//   - azure_quota_scrape_errors_total: Total number of scan errors since startup
//   - azure_quota_last_scrape_timestamp_seconds: Unix timestamp of the last scan attempt
//   - azure_quota_resource_count: Number of resources in the current snapshot
//
// The main type is QuotaCollector, which:
//   - Runs full quota scans in the background at configurable intervals
//   - Caches the reconciled snapshot to serve Prometheus scrapes quickly
//   - Keeps the previous snapshot when a scan fails, reporting the failure via azure_quota_up
//   - Provides thread-safe access to metrics via RWMutex
//   - Works with any quota.Scanner implementation
//
// Example usage:
//
//	runner := scan.NewRunner(client, cred, cfg, log, nil)
//	collector := collector.NewQuotaCollector(runner, cfg, log)
//
//	// Register with Prometheus
//	prometheus.MustRegister(collector)
//
//	// Start background refresh
//	ctx := context.Background()
//	collector.StartBackgroundRefresh(ctx)
//
//	// Check readiness
//	if collector.IsReady() {
//		fmt.Println("Collector is ready")
//	}
package collector
