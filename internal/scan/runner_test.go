package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/logger"
	"github.com/zgpcy/azure-quota-watch/internal/quota"
)

// fakeAPI serves canned records keyed by provider/region and records
// the order of calls.
type fakeAPI struct {
	usages   map[string][]quota.UsageRecord
	quotas   map[string][]quota.QuotaRecord
	usageErr map[string]error
	quotaErr map[string]error

	usageCalls []string
	quotaCalls []string
}

func pairKey(provider, region string) string {
	return fmt.Sprintf("%s/%s", provider, region)
}

func (f *fakeAPI) Usages(_ context.Context, _, _, provider, region string) ([]quota.UsageRecord, error) {
	k := pairKey(provider, region)
	f.usageCalls = append(f.usageCalls, k)
	if err := f.usageErr[k]; err != nil {
		return nil, err
	}
	return f.usages[k], nil
}

func (f *fakeAPI) Quotas(_ context.Context, _, _, provider, region string) ([]quota.QuotaRecord, error) {
	k := pairKey(provider, region)
	f.quotaCalls = append(f.quotaCalls, k)
	if err := f.quotaErr[k]; err != nil {
		return nil, err
	}
	return f.quotas[k], nil
}

type fakeTokens struct {
	token string
	err   error
	calls int
}

func (f *fakeTokens) Token(_ context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

// recordingObserver collects pair reports in arrival order.
type recordingObserver struct {
	pairs []quota.PairReport
}

func (o *recordingObserver) Pair(report quota.PairReport) {
	o.pairs = append(o.pairs, report)
}

func testConfig(subs []config.Subscription, providers, regions []string) *config.Config {
	threshold := 80.0
	return &config.Config{
		Subscriptions: subs,
		Providers:     providers,
		Regions:       regions,
		Threshold:     &threshold,
	}
}

func testLogger() *logger.Logger {
	return logger.New("error", "text")
}

func TestRunner_Scan_OrderAndAccumulation(t *testing.T) {
	api := &fakeAPI{
		usages: map[string][]quota.UsageRecord{
			"Microsoft.Storage/eastus":    {{Name: "Storage Accounts", CurrentValue: 6}},
			"Microsoft.Storage/centralus": {{Name: "Storage Accounts", CurrentValue: 240}},
			"Microsoft.Network/eastus":    {{Name: "Network Watchers", CurrentValue: 1}},
			"Microsoft.Network/centralus": {},
		},
		quotas: map[string][]quota.QuotaRecord{
			"Microsoft.Storage/eastus":    {{Name: "Storage Accounts", Limit: 250}},
			"Microsoft.Storage/centralus": {{Name: "Storage Accounts", Limit: 250}},
			"Microsoft.Network/eastus":    {{Name: "Network Watchers", Limit: 1}},
			"Microsoft.Network/centralus": {},
		},
	}
	tokens := &fakeTokens{token: "tok"}
	observer := &recordingObserver{}
	cfg := testConfig(
		[]config.Subscription{{ID: "sub-1", Name: "prod"}},
		[]string{"Microsoft.Storage", "Microsoft.Network"},
		[]string{"eastus", "centralus"},
	)

	runner := NewRunner(api, tokens, cfg, testLogger(), observer)
	result, err := runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v, want nil", err)
	}

	// Providers iterate in the outer loop, regions in the inner one.
	wantOrder := []string{
		"Microsoft.Storage/eastus",
		"Microsoft.Storage/centralus",
		"Microsoft.Network/eastus",
		"Microsoft.Network/centralus",
	}
	if len(api.usageCalls) != len(wantOrder) {
		t.Fatalf("usage calls = %v, want %v", api.usageCalls, wantOrder)
	}
	for i, want := range wantOrder {
		if api.usageCalls[i] != want {
			t.Errorf("usageCalls[%d] = %s, want %s", i, api.usageCalls[i], want)
		}
	}

	if len(result.Pairs) != 4 {
		t.Fatalf("Pairs = %d, want 4", len(result.Pairs))
	}
	if result.Pairs[0].Provider != "Microsoft.Storage" || result.Pairs[0].Region != "eastus" {
		t.Errorf("Pairs[0] = %s/%s, want Microsoft.Storage/eastus",
			result.Pairs[0].Provider, result.Pairs[0].Region)
	}
	if result.Pairs[0].SubscriptionID != "sub-1" || result.Pairs[0].SubscriptionName != "prod" {
		t.Errorf("Pairs[0] subscription = %s/%s, want sub-1/prod",
			result.Pairs[0].SubscriptionID, result.Pairs[0].SubscriptionName)
	}

	// 240/250 = 96% and 1/1 = 100% are over the 80% threshold.
	if got := result.NearingCount(); got != 2 {
		t.Errorf("NearingCount() = %d, want 2", got)
	}

	// Observer saw every pair, in order.
	if len(observer.pairs) != 4 {
		t.Fatalf("observer pairs = %d, want 4", len(observer.pairs))
	}
	for i, p := range observer.pairs {
		if got := pairKey(p.Provider, p.Region); got != wantOrder[i] {
			t.Errorf("observer.pairs[%d] = %s, want %s", i, got, wantOrder[i])
		}
	}
}

func TestRunner_Scan_AuthFailure_Fatal(t *testing.T) {
	api := &fakeAPI{}
	tokens := &fakeTokens{err: errors.New("no credential available")}
	cfg := testConfig(
		[]config.Subscription{{ID: "sub-1", Name: "prod"}},
		[]string{"Microsoft.Storage"},
		[]string{"eastus"},
	)

	runner := NewRunner(api, tokens, cfg, testLogger(), nil)
	result, err := runner.Scan(context.Background())
	if err == nil {
		t.Fatal("Scan() error = nil, want auth error")
	}
	if result != nil {
		t.Errorf("result = %v, want nil on fatal error", result)
	}
	if len(api.usageCalls) != 0 {
		t.Errorf("usage calls = %d, want 0 after auth failure", len(api.usageCalls))
	}
}

func TestRunner_Scan_UsageFailure_AbortsRun(t *testing.T) {
	api := &fakeAPI{
		usages: map[string][]quota.UsageRecord{
			"Microsoft.Storage/eastus": {{Name: "Storage Accounts", CurrentValue: 6}},
		},
		quotas: map[string][]quota.QuotaRecord{
			"Microsoft.Storage/eastus": {{Name: "Storage Accounts", Limit: 250}},
		},
		usageErr: map[string]error{
			"Microsoft.Storage/centralus": errors.New("API request failed with status 403: access denied"),
		},
	}
	tokens := &fakeTokens{token: "tok"}
	observer := &recordingObserver{}
	cfg := testConfig(
		[]config.Subscription{{ID: "sub-1", Name: "prod"}},
		[]string{"Microsoft.Storage"},
		[]string{"eastus", "centralus", "eastus2"},
	)

	runner := NewRunner(api, tokens, cfg, testLogger(), observer)
	result, err := runner.Scan(context.Background())
	if err == nil {
		t.Fatal("Scan() error = nil, want error from second pair")
	}
	if result != nil {
		t.Errorf("result = %v, want nil on fatal error", result)
	}

	// The first pair completed and was reported before the failure;
	// the third was never attempted.
	if len(observer.pairs) != 1 {
		t.Fatalf("observer pairs = %d, want 1", len(observer.pairs))
	}
	if observer.pairs[0].Region != "eastus" {
		t.Errorf("observed region = %s, want eastus", observer.pairs[0].Region)
	}
	if len(api.usageCalls) != 2 {
		t.Errorf("usage calls = %v, want exactly 2 (eastus, then the failing centralus)", api.usageCalls)
	}
}

func TestRunner_Scan_QuotaFailure_AbortsRun(t *testing.T) {
	api := &fakeAPI{
		usages: map[string][]quota.UsageRecord{
			"Microsoft.Storage/eastus": {{Name: "Storage Accounts", CurrentValue: 6}},
		},
		quotaErr: map[string]error{
			"Microsoft.Storage/eastus": errors.New("API request failed with status 500: boom"),
		},
	}
	tokens := &fakeTokens{token: "tok"}
	cfg := testConfig(
		[]config.Subscription{{ID: "sub-1", Name: "prod"}},
		[]string{"Microsoft.Storage"},
		[]string{"eastus"},
	)

	runner := NewRunner(api, tokens, cfg, testLogger(), nil)
	_, err := runner.Scan(context.Background())
	if err == nil {
		t.Fatal("Scan() error = nil, want quota query error")
	}
}

func TestRunner_Scan_TokenPerSubscription(t *testing.T) {
	api := &fakeAPI{
		usages: map[string][]quota.UsageRecord{"Microsoft.Storage/eastus": {}},
		quotas: map[string][]quota.QuotaRecord{"Microsoft.Storage/eastus": {}},
	}
	tokens := &fakeTokens{token: "tok"}
	cfg := testConfig(
		[]config.Subscription{
			{ID: "sub-1", Name: "prod"},
			{ID: "sub-2", Name: "dev"},
		},
		[]string{"Microsoft.Storage"},
		[]string{"eastus"},
	)

	runner := NewRunner(api, tokens, cfg, testLogger(), nil)
	result, err := runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v, want nil", err)
	}

	if tokens.calls != 2 {
		t.Errorf("token calls = %d, want one per subscription", tokens.calls)
	}
	if len(result.Pairs) != 2 {
		t.Errorf("Pairs = %d, want 2", len(result.Pairs))
	}
	if result.Pairs[1].SubscriptionID != "sub-2" {
		t.Errorf("Pairs[1].SubscriptionID = %s, want sub-2", result.Pairs[1].SubscriptionID)
	}
}

func TestRunner_SubscriptionCount(t *testing.T) {
	cfg := testConfig(
		[]config.Subscription{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]string{"Microsoft.Storage"},
		[]string{"eastus"},
	)
	runner := NewRunner(&fakeAPI{}, &fakeTokens{}, cfg, testLogger(), nil)

	if got := runner.SubscriptionCount(); got != 3 {
		t.Errorf("SubscriptionCount() = %d, want 3", got)
	}
}

func TestRunner_Scan_EmptyQuotaList_ReportsUnmatched(t *testing.T) {
	api := &fakeAPI{
		usages: map[string][]quota.UsageRecord{
			"Microsoft.Storage/eastus": {{Name: "X", CurrentValue: 5}},
		},
		quotas: map[string][]quota.QuotaRecord{
			"Microsoft.Storage/eastus": {},
		},
	}
	tokens := &fakeTokens{token: "tok"}
	cfg := testConfig(
		[]config.Subscription{{ID: "sub-1", Name: "prod"}},
		[]string{"Microsoft.Storage"},
		[]string{"eastus"},
	)

	runner := NewRunner(api, tokens, cfg, testLogger(), nil)
	result, err := runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v, want nil (missing quota is not fatal)", err)
	}

	pair := result.Pairs[0]
	if len(pair.Entries) != 0 {
		t.Errorf("Entries = %d, want 0", len(pair.Entries))
	}
	if len(pair.Unmatched) != 1 || pair.Unmatched[0].Name != "X" {
		t.Errorf("Unmatched = %v, want [X]", pair.Unmatched)
	}
	if pair.UsageCount != 1 || pair.QuotaCount != 0 {
		t.Errorf("counts = %d/%d, want 1/0", pair.UsageCount, pair.QuotaCount)
	}
}
