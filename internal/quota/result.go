package quota

import (
	"context"
)

// PairReport is the reconciled outcome for one provider/region pair
// within one subscription. SubscriptionName may be empty when no
// friendly name was configured.
type PairReport struct {
	SubscriptionID   string
	SubscriptionName string
	Provider         string
	Region           string
	Outcome
}

// ScanResult holds the pair reports of one full scan, in processing
// order (subscriptions, then providers, then regions). The scanner
// that produced it owns the slice; nothing else appends to it.
type ScanResult struct {
	Pairs []PairReport
}

// ResourceCount returns the total number of reconciled entries across
// all pairs.
func (r *ScanResult) ResourceCount() int {
	n := 0
	for _, p := range r.Pairs {
		n += len(p.Entries)
	}
	return n
}

// NearingCount returns the total number of entries nearing their limit
// across all pairs.
func (r *ScanResult) NearingCount() int {
	n := 0
	for _, p := range r.Pairs {
		n += p.Outcome.NearingCount()
	}
	return n
}

// Scanner runs one full sequential scan over every configured
// subscription, provider and region.
type Scanner interface {
	// Scan performs the scan and returns the accumulated pair reports.
	// Any authentication, transport or parse failure aborts the scan
	// and is returned as the error.
	Scan(ctx context.Context) (*ScanResult, error)

	// SubscriptionCount returns the number of subscriptions covered by
	// a scan.
	SubscriptionCount() int
}
