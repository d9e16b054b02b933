package quota

// Outcome is the result of reconciling one usage list against one
// quota list. Entries holds the matched pairs in usage input order.
// Unmatched holds the usage records with no matching quota record,
// also in input order. UsageCount and QuotaCount are the raw lengths
// of the two input lists, kept for the count mismatch check.
type Outcome struct {
	Entries    []ReconciledEntry
	Unmatched  []UsageRecord
	UsageCount int
	QuotaCount int
}

// NearingCount returns the number of entries at or above the reporting
// threshold.
func (o Outcome) NearingCount() int {
	n := 0
	for _, e := range o.Entries {
		if e.NearingLimit {
			n++
		}
	}
	return n
}

// CountMismatch reports whether the usage and quota lists differed in
// length. A mismatch is reported as a warning but is never fatal.
func (o Outcome) CountMismatch() bool {
	return o.UsageCount != o.QuotaCount
}

// Reconcile joins usage records to quota records by exact name
// equality and classifies each matched pair against the threshold
// percentage.
//
// For each usage record, in input order, the first quota record with an
// equal name wins; duplicate names in the quota list are not flagged.
// A usage record with no match produces no entry and is listed in
// Unmatched instead.
//
// Percentage is 0 whenever usage is not positive, regardless of the
// quota value. For positive usage the percentage is usage/quota*100,
// which is +Inf when the quota is zero; such entries carry ZeroQuota
// and always classify as nearing the limit. Reconcile performs no I/O.
func Reconcile(usages []UsageRecord, quotas []QuotaRecord, threshold float64) Outcome {
	out := Outcome{
		UsageCount: len(usages),
		QuotaCount: len(quotas),
	}

	for _, u := range usages {
		limit, ok := firstLimitNamed(quotas, u.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, u)
			continue
		}

		entry := ReconciledEntry{
			Name:  u.Name,
			Usage: u.CurrentValue,
			Quota: limit,
		}
		if entry.Usage > 0 {
			entry.Percentage = entry.Usage / entry.Quota * 100
			entry.ZeroQuota = entry.Quota == 0
		}
		entry.NearingLimit = entry.Percentage > threshold
		out.Entries = append(out.Entries, entry)
	}

	return out
}

func firstLimitNamed(quotas []QuotaRecord, name string) (float64, bool) {
	for _, q := range quotas {
		if q.Name == name {
			return q.Limit, true
		}
	}
	return 0, false
}
