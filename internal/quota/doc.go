// Package quota defines the domain model for usage-versus-quota
// reporting and the reconciliation that drives it.
//
// The two inputs are flat record lists parsed from the management API:
//
//	type UsageRecord struct {
//		Name         string  // localized display name, join key
//		CurrentValue float64 // observed consumption
//	}
//
//	type QuotaRecord struct {
//		Name  string  // localized display name
//		Limit float64 // maximum allowed consumption
//	}
//
// Reconcile joins them by exact name equality, first match wins:
//
//	out := quota.Reconcile(usages, quotas, 80)
//	for _, e := range out.Entries {
//		if e.NearingLimit {
//			// usage exceeds 80% of the quota limit
//		}
//	}
//
// The percentage rule is asymmetric: zero (or negative) usage is
// always 0%, regardless of the quota value, while positive usage
// against a zero quota divides to +Inf. The +Inf case is kept visible
// rather than clamped; entries carry a ZeroQuota flag so callers can
// report it as its own condition.
//
// A usage record with no matching quota record produces no entry and
// is surfaced through Outcome.Unmatched. The raw list lengths are kept
// on the Outcome so callers can warn when the two endpoints returned
// differing element counts.
//
// PairReport and ScanResult aggregate outcomes per provider/region
// pair and per full scan. The Scanner interface is the seam between
// the sequential runner and its consumers (the check command and the
// Prometheus collector); it keeps those consumers independent of the
// Azure client.
package quota
