// Package report turns reconciled scan output into operator-facing
// warnings and summaries. The Reporter logs one block per
// provider/region pair and can optionally render a per-resource table
// for interactive runs.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/zgpcy/azure-quota-watch/internal/logger"
	"github.com/zgpcy/azure-quota-watch/internal/quota"
)

// Reporter emits the result of each scanned provider/region pair as it
// completes. Warnings and summaries go through the logger (stderr) so
// that the optional detail table on out (stdout by default) can be
// piped or redirected on its own.
type Reporter struct {
	logger   *logger.Logger
	out      io.Writer
	detailed bool
}

// New creates a Reporter. When detailed is true, each pair is followed
// by a per-resource table written to out.
func New(log *logger.Logger, out io.Writer, detailed bool) *Reporter {
	return &Reporter{
		logger:   log,
		out:      out,
		detailed: detailed,
	}
}

// Pair reports one completed provider/region pair. The order is fixed:
// the element count mismatch warning first, then one warning per usage
// record without a quota, then the per-resource limit warnings, then
// the pair summary line, then the optional detail table.
func (r *Reporter) Pair(pair quota.PairReport) {
	if pair.CountMismatch() {
		r.logger.Warn(fmt.Sprintf("Usage and quota element counts differ: %d usages, %d quotas", pair.UsageCount, pair.QuotaCount),
			"subscription", pair.SubscriptionName,
			"provider", pair.Provider,
			"region", pair.Region)
	}
	for _, u := range pair.Unmatched {
		r.logger.Warn(fmt.Sprintf("Quota not found for usage '%s'", u.Name),
			"subscription", pair.SubscriptionName,
			"provider", pair.Provider,
			"region", pair.Region)
	}
	for _, e := range pair.Entries {
		if e.ZeroQuota {
			r.logger.Warn(fmt.Sprintf("ZERO QUOTA WITH USAGE: '%s' Usage: %s, Quota: 0", e.Name, formatValue(e.Usage)))
		}
		if e.NearingLimit {
			r.logger.Warn(fmt.Sprintf("NEARING OR ABOVE LIMIT: '%s' Usage: %s, Quota: %s, Percentage: %s%%",
				e.Name, formatValue(e.Usage), formatValue(e.Quota), formatValue(e.Percentage)))
		}
	}
	r.logger.Info(fmt.Sprintf("[Provider: %s Region: %s] %d out of %d are nearing limit",
		pair.Provider, pair.Region, pair.NearingCount(), pair.UsageCount))

	if r.detailed {
		r.renderTable(pair)
	}
}

// renderTable writes the per-resource breakdown for one pair.
func (r *Reporter) renderTable(pair quota.PairReport) {
	if len(pair.Entries) == 0 && len(pair.Unmatched) == 0 {
		return
	}

	fmt.Fprintf(r.out, "\nSubscription %s, %s in %s:\n", pair.SubscriptionName, pair.Provider, pair.Region)

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Resource", "Usage", "Quota", "Used %", "Status"})
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator(" ")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, e := range pair.Entries {
		table.Append([]string{
			e.Name,
			formatValue(e.Usage),
			formatValue(e.Quota),
			formatValue(e.Percentage),
			statusLabel(e),
		})
	}
	for _, u := range pair.Unmatched {
		table.Append([]string{
			u.Name,
			formatValue(u.CurrentValue),
			"-",
			"-",
			color.YellowString("NO QUOTA"),
		})
	}
	table.Render()
}

// statusLabel picks the colored status cell for one reconciled entry.
func statusLabel(e quota.ReconciledEntry) string {
	switch {
	case e.ZeroQuota:
		return color.RedString("ZERO QUOTA")
	case e.NearingLimit:
		return color.YellowString("NEARING")
	default:
		return color.GreenString("OK")
	}
}

// formatValue renders a metric value the way the API returned it:
// integral values without a decimal point, fractional values with the
// shortest representation that round-trips.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
