// Package scan drives the sequential usage-versus-quota scan across
// subscriptions, providers and regions.
package scan

import (
	"context"
	"fmt"

	"github.com/zgpcy/azure-quota-watch/internal/azure"
	"github.com/zgpcy/azure-quota-watch/internal/clock"
	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/logger"
	"github.com/zgpcy/azure-quota-watch/internal/quota"
)

// QuotaAPI is the slice of the Azure client the runner depends on.
type QuotaAPI interface {
	Usages(ctx context.Context, token, subscriptionID, provider, region string) ([]quota.UsageRecord, error)
	Quotas(ctx context.Context, token, subscriptionID, provider, region string) ([]quota.QuotaRecord, error)
}

// TokenSource mints bearer tokens for the management endpoint.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Observer receives each pair report as soon as it is reconciled, so
// reporting for completed pairs happens even when a later pair aborts
// the scan.
type Observer interface {
	Pair(report quota.PairReport)
}

// Verify the azure package satisfies the runner's seams.
var (
	_ QuotaAPI    = (*azure.Client)(nil)
	_ TokenSource = (*azure.Credential)(nil)
)

// Runner walks subscriptions, then providers, then regions, strictly
// in order and one pair at a time. Any authentication, transport or
// parse failure aborts the whole scan; the count-mismatch and
// missing-quota conditions stay inside the pair reports.
type Runner struct {
	api      QuotaAPI
	tokens   TokenSource
	cfg      *config.Config
	logger   *logger.Logger
	clock    clock.Clock
	observer Observer
}

// Verify that Runner implements quota.Scanner
var _ quota.Scanner = (*Runner)(nil)

// NewRunner creates a runner. observer may be nil when no per-pair
// reporting is wanted, as in serve mode.
func NewRunner(api QuotaAPI, tokens TokenSource, cfg *config.Config, log *logger.Logger, observer Observer) *Runner {
	return &Runner{
		api:      api,
		tokens:   tokens,
		cfg:      cfg,
		logger:   log,
		clock:    clock.RealClock{},
		observer: observer,
	}
}

// SubscriptionCount returns the number of subscriptions a scan covers.
func (r *Runner) SubscriptionCount() int {
	return len(r.cfg.Subscriptions)
}

// Scan performs one full sequential scan and returns the accumulated
// pair reports. The returned result is owned by the caller; the runner
// keeps no state between scans.
func (r *Runner) Scan(ctx context.Context) (*quota.ScanResult, error) {
	threshold := config.DefaultThreshold
	if r.cfg.Threshold != nil {
		threshold = *r.cfg.Threshold
	}

	start := r.clock.Now()
	result := &quota.ScanResult{}

	for _, sub := range r.cfg.Subscriptions {
		r.logger.Info("Authenticating",
			"subscription_id", sub.ID,
			"subscription_name", sub.Name)

		token, err := r.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("authentication failed for subscription %s: %w", sub.ID, err)
		}

		for _, provider := range r.cfg.Providers {
			for _, region := range r.cfg.Regions {
				pair, err := r.scanPair(ctx, token, sub, provider, region, threshold)
				if err != nil {
					return nil, err
				}

				if r.observer != nil {
					r.observer.Pair(pair)
				}
				result.Pairs = append(result.Pairs, pair)
			}
		}
	}

	r.logger.Info("Scan complete",
		"pairs", len(result.Pairs),
		"resources", result.ResourceCount(),
		"nearing_limit", result.NearingCount(),
		"duration", r.clock.Now().Sub(start).String())

	return result, nil
}

// scanPair queries both endpoints for one provider/region pair and
// reconciles the results.
func (r *Runner) scanPair(ctx context.Context, token string, sub config.Subscription, provider, region string, threshold float64) (quota.PairReport, error) {
	usages, err := r.api.Usages(ctx, token, sub.ID, provider, region)
	if err != nil {
		return quota.PairReport{}, fmt.Errorf("usage query failed for %s/%s in subscription %s: %w",
			provider, region, sub.ID, err)
	}

	quotas, err := r.api.Quotas(ctx, token, sub.ID, provider, region)
	if err != nil {
		return quota.PairReport{}, fmt.Errorf("quota query failed for %s/%s in subscription %s: %w",
			provider, region, sub.ID, err)
	}

	return quota.PairReport{
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.Name,
		Provider:         provider,
		Region:           region,
		Outcome:          quota.Reconcile(usages, quotas, threshold),
	}, nil
}
