package quota

// UsageRecord represents the current consumption of one resource type
// in a provider/region scope. Name is the localized display name and
// is the join key against quota records.
type UsageRecord struct {
	Name         string
	CurrentValue float64
}

// QuotaRecord represents the quota limit of one resource type in a
// provider/region scope. Name is the localized display name.
type QuotaRecord struct {
	Name  string
	Limit float64
}

// ReconciledEntry is one usage record joined to its quota record.
// Entries are transient; they are built per provider/region pair and
// discarded after reporting.
type ReconciledEntry struct {
	Name       string
	Usage      float64
	Quota      float64
	Percentage float64

	// NearingLimit is true when Percentage exceeds the reporting
	// threshold (strictly greater than).
	NearingLimit bool

	// ZeroQuota marks the edge case of positive usage against a zero
	// quota limit. Percentage is +Inf for these entries and they always
	// count as nearing the limit.
	ZeroQuota bool
}
