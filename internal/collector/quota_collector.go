package collector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zgpcy/azure-quota-watch/internal/clock"
	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/logger"
	"github.com/zgpcy/azure-quota-watch/internal/quota"
	"github.com/zgpcy/azure-quota-watch/internal/version"
)

// QuotaCollector implements prometheus.Collector for Azure quota metrics
type QuotaCollector struct {
	scanner quota.Scanner
	cfg     *config.Config
	logger  *logger.Logger
	clock   clock.Clock // Time provider for testing

	// Metrics
	usageMetric          *prometheus.Desc
	limitMetric          *prometheus.Desc
	percentMetric        *prometheus.Desc
	nearingMetric        *prometheus.Desc
	upMetric             *prometheus.Desc
	scrapeDurationMetric *prometheus.Desc
	scrapeErrorsTotal    prometheus.Counter
	lastScrapeTimeMetric *prometheus.Desc
	resourceCountMetric  *prometheus.Desc
	buildInfo            *prometheus.GaugeVec // Build version information

	// State
	mu                 sync.RWMutex
	lastResult         *quota.ScanResult
	lastError          error
	lastScrape         time.Time
	lastScrapeDuration time.Duration
	refreshStarted     atomic.Bool // Prevent multiple refresh goroutines
	isReady            bool
}

// resourceLabels is the label set shared by the per-resource metrics.
var resourceLabels = []string{"subscription_id", "subscription_name", "provider", "region", "resource"}

// NewQuotaCollector creates a new QuotaCollector
func NewQuotaCollector(scanner quota.Scanner, cfg *config.Config, log *logger.Logger) *QuotaCollector {
	scrapeErrorsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "azure_quota_scrape_errors_total",
			Help: "Total number of quota scan errors since startup",
		},
	)

	// Create build info metric
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "azure_quota_build_info",
			Help: "Build version information",
		},
		[]string{"version", "git_commit", "build_date", "go_version"},
	)

	// Set build info to 1 with version labels
	versionInfo := version.Info()
	buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	return &QuotaCollector{
		scanner: scanner,
		cfg:     cfg,
		logger:  log,
		clock:   clock.RealClock{}, // Use real system time by default
		usageMetric: prometheus.NewDesc(
			"azure_quota_usage",
			"Current usage value for the resource as reported by the Microsoft.Quota API",
			resourceLabels,
			nil,
		),
		limitMetric: prometheus.NewDesc(
			"azure_quota_limit",
			"Quota limit for the resource",
			resourceLabels,
			nil,
		),
		percentMetric: prometheus.NewDesc(
			"azure_quota_usage_percent",
			"Usage as a percentage of the quota limit. +Inf when usage is positive and the quota is 0.",
			resourceLabels,
			nil,
		),
		nearingMetric: prometheus.NewDesc(
			"azure_quota_nearing_limit",
			"Whether the resource usage is above the warning threshold (1 = nearing or above limit)",
			resourceLabels,
			nil,
		),
		upMetric: prometheus.NewDesc(
			"azure_quota_up",
			"Was the last quota scan successful (1 = success, 0 = failure)",
			nil,
			nil,
		),
		scrapeDurationMetric: prometheus.NewDesc(
			"azure_quota_scrape_duration_seconds",
			"Duration of the last quota scan in seconds",
			nil,
			nil,
		),
		scrapeErrorsTotal: scrapeErrorsTotal,
		lastScrapeTimeMetric: prometheus.NewDesc(
			"azure_quota_last_scrape_timestamp_seconds",
			"Unix timestamp of the last quota scan attempt",
			nil,
			nil,
		),
		resourceCountMetric: prometheus.NewDesc(
			"azure_quota_resource_count",
			"Number of resources in the current quota snapshot",
			nil,
			nil,
		),
		buildInfo: buildInfo,
	}
}

// Describe implements prometheus.Collector
func (c *QuotaCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.usageMetric
	ch <- c.limitMetric
	ch <- c.percentMetric
	ch <- c.nearingMetric
	ch <- c.upMetric
	ch <- c.scrapeDurationMetric
	c.scrapeErrorsTotal.Describe(ch) // Describe the counter
	ch <- c.lastScrapeTimeMetric
	ch <- c.resourceCountMetric
	c.buildInfo.Describe(ch) // Describe build info
}

// Collect implements prometheus.Collector
func (c *QuotaCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastResult != nil {
		for _, pair := range c.lastResult.Pairs {
			for _, e := range pair.Entries {
				labels := []string{
					pair.SubscriptionID,
					pair.SubscriptionName,
					pair.Provider,
					pair.Region,
					e.Name,
				}
				ch <- prometheus.MustNewConstMetric(c.usageMetric, prometheus.GaugeValue, e.Usage, labels...)
				ch <- prometheus.MustNewConstMetric(c.limitMetric, prometheus.GaugeValue, e.Quota, labels...)
				ch <- prometheus.MustNewConstMetric(c.percentMetric, prometheus.GaugeValue, e.Percentage, labels...)
				nearing := 0.0
				if e.NearingLimit {
					nearing = 1.0
				}
				ch <- prometheus.MustNewConstMetric(c.nearingMetric, prometheus.GaugeValue, nearing, labels...)
			}
		}
	}

	// Send up metric
	upValue := 0.0
	if c.lastError == nil && c.lastResult != nil {
		upValue = 1.0
	}
	ch <- prometheus.MustNewConstMetric(
		c.upMetric,
		prometheus.GaugeValue,
		upValue,
	)

	// Send scrape duration metric
	ch <- prometheus.MustNewConstMetric(
		c.scrapeDurationMetric,
		prometheus.GaugeValue,
		c.lastScrapeDuration.Seconds(),
	)

	// Collect scrape errors counter (proper counter that survives across scrapes)
	c.scrapeErrorsTotal.Collect(ch)

	// Send last scrape time metric
	if !c.lastScrape.IsZero() {
		ch <- prometheus.MustNewConstMetric(
			c.lastScrapeTimeMetric,
			prometheus.GaugeValue,
			float64(c.lastScrape.Unix()),
		)
	}

	// Send resource count metric
	resourceCount := 0
	if c.lastResult != nil {
		resourceCount = c.lastResult.ResourceCount()
	}
	ch <- prometheus.MustNewConstMetric(
		c.resourceCountMetric,
		prometheus.GaugeValue,
		float64(resourceCount),
	)

	// Collect build info metric
	c.buildInfo.Collect(ch)
}

// StartBackgroundRefresh starts a goroutine that periodically rescans quota data
// Uses atomic flag to prevent multiple refresh goroutines
func (c *QuotaCollector) StartBackgroundRefresh(ctx context.Context) {
	// Prevent multiple refresh goroutines
	if !c.refreshStarted.CompareAndSwap(false, true) {
		c.logger.Warn("Background refresh already started, skipping")
		return
	}

	// Initial scan
	c.refresh(ctx)

	// Background refresh loop
	ticker := time.NewTicker(time.Duration(c.cfg.RefreshInterval) * time.Second)
	go func() {
		defer ticker.Stop()
		defer c.refreshStarted.Store(false) // Reset on exit
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stopping background refresh")
				return
			case <-ticker.C:
				c.refresh(ctx)
			}
		}
	}()
}

// refresh runs one full quota scan and updates the cached snapshot. On
// error the previous snapshot is kept so /metrics keeps serving the
// last known data, with azure_quota_up reporting the failure.
func (c *QuotaCollector) refresh(ctx context.Context) {
	c.logger.Info("Refreshing quota data", "subscriptions", c.scanner.SubscriptionCount())
	start := time.Now()

	result, err := c.scanner.Scan(ctx)
	duration := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastScrape = c.clock.Now()
	c.lastScrapeDuration = duration
	c.lastError = err

	if err != nil {
		c.scrapeErrorsTotal.Inc()
		c.logger.Error("Failed to refresh quota data", "error", err)
		c.isReady = false
		return
	}

	c.lastResult = result
	c.isReady = true
	c.logger.Info("Successfully refreshed quota data",
		"pairs", len(result.Pairs),
		"resource_count", result.ResourceCount(),
		"nearing_limit", result.NearingCount(),
		"duration_seconds", duration.Seconds())
}

// IsReady returns true if the collector has successfully scanned at least once
func (c *QuotaCollector) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// LastError returns the last error encountered during refresh
func (c *QuotaCollector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// LastScrapeTime returns the time of the last scan attempt
func (c *QuotaCollector) LastScrapeTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastScrape
}

// ResourceCount returns the number of resources in the current snapshot
func (c *QuotaCollector) ResourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastResult == nil {
		return 0
	}
	return c.lastResult.ResourceCount()
}

// NearingCount returns how many snapshot resources are nearing their limit
func (c *QuotaCollector) NearingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastResult == nil {
		return 0
	}
	return c.lastResult.NearingCount()
}
