package report

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/zgpcy/azure-quota-watch/internal/logger"
	"github.com/zgpcy/azure-quota-watch/internal/quota"
)

func captureLogger() (*logger.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &logger.Logger{Logger: slog.New(handler)}, buf
}

func testPair(usages []quota.UsageRecord, quotas []quota.QuotaRecord, threshold float64) quota.PairReport {
	return quota.PairReport{
		SubscriptionID:   "sub-1",
		SubscriptionName: "prod",
		Provider:         "Microsoft.Network",
		Region:           "eastus",
		Outcome:          quota.Reconcile(usages, quotas, threshold),
	}
}

func TestReporter_Pair_BelowThreshold_NoWarning(t *testing.T) {
	log, logs := captureLogger()
	out := &bytes.Buffer{}
	r := New(log, out, false)

	r.Pair(testPair(
		[]quota.UsageRecord{{Name: "Public IP Addresses", CurrentValue: 6}},
		[]quota.QuotaRecord{{Name: "Public IP Addresses", Limit: 250}},
		80,
	))

	got := logs.String()
	if strings.Contains(got, "NEARING OR ABOVE LIMIT") {
		t.Errorf("log contains a limit warning for 2.4%% usage:\n%s", got)
	}
	if !strings.Contains(got, "[Provider: Microsoft.Network Region: eastus] 0 out of 1 are nearing limit") {
		t.Errorf("log missing summary line:\n%s", got)
	}
	if out.Len() != 0 {
		t.Errorf("out = %q, want empty without detailed mode", out.String())
	}
}

func TestReporter_Pair_AtLimit_Warning(t *testing.T) {
	log, logs := captureLogger()
	r := New(log, &bytes.Buffer{}, false)

	r.Pair(testPair(
		[]quota.UsageRecord{{Name: "Network Watchers", CurrentValue: 1}},
		[]quota.QuotaRecord{{Name: "Network Watchers", Limit: 1}},
		80,
	))

	got := logs.String()
	want := "NEARING OR ABOVE LIMIT: 'Network Watchers' Usage: 1, Quota: 1, Percentage: 100%"
	if !strings.Contains(got, want) {
		t.Errorf("log missing %q:\n%s", want, got)
	}
	if !strings.Contains(got, "[Provider: Microsoft.Network Region: eastus] 1 out of 1 are nearing limit") {
		t.Errorf("log missing summary line:\n%s", got)
	}
}

func TestReporter_Pair_FractionalPercentage_Formatted(t *testing.T) {
	log, logs := captureLogger()
	r := New(log, &bytes.Buffer{}, false)

	r.Pair(testPair(
		[]quota.UsageRecord{{Name: "Virtual Machines", CurrentValue: 3}},
		[]quota.QuotaRecord{{Name: "Virtual Machines", Limit: 4}},
		50,
	))

	want := "NEARING OR ABOVE LIMIT: 'Virtual Machines' Usage: 3, Quota: 4, Percentage: 75%"
	if got := logs.String(); !strings.Contains(got, want) {
		t.Errorf("log missing %q:\n%s", want, got)
	}
}

func TestReporter_Pair_EmptyQuotaList_NotFoundWarning(t *testing.T) {
	log, logs := captureLogger()
	r := New(log, &bytes.Buffer{}, false)

	r.Pair(testPair(
		[]quota.UsageRecord{{Name: "X", CurrentValue: 5}},
		nil,
		80,
	))

	got := logs.String()
	if n := strings.Count(got, "Quota not found for usage 'X'"); n != 1 {
		t.Errorf("not-found warnings = %d, want 1:\n%s", n, got)
	}
	if !strings.Contains(got, "counts differ") {
		t.Errorf("log missing count mismatch warning:\n%s", got)
	}
	if !strings.Contains(got, "[Provider: Microsoft.Network Region: eastus] 0 out of 1 are nearing limit") {
		t.Errorf("log missing summary line:\n%s", got)
	}
}

func TestReporter_Pair_MismatchWarningComesFirst(t *testing.T) {
	log, logs := captureLogger()
	r := New(log, &bytes.Buffer{}, false)

	r.Pair(testPair(
		[]quota.UsageRecord{{Name: "A", CurrentValue: 5}, {Name: "B", CurrentValue: 2}},
		[]quota.QuotaRecord{{Name: "A", Limit: 5}},
		80,
	))

	got := logs.String()
	mismatch := strings.Index(got, "counts differ")
	notFound := strings.Index(got, "Quota not found for usage 'B'")
	nearing := strings.Index(got, "NEARING OR ABOVE LIMIT: 'A'")
	summary := strings.Index(got, "out of 2 are nearing limit")
	if mismatch < 0 || notFound < 0 || nearing < 0 || summary < 0 {
		t.Fatalf("log missing expected lines:\n%s", got)
	}
	if !(mismatch < notFound && notFound < nearing && nearing < summary) {
		t.Errorf("line order = mismatch@%d notFound@%d nearing@%d summary@%d, want ascending:\n%s",
			mismatch, notFound, nearing, summary, got)
	}
}

func TestReporter_Pair_ZeroQuotaWithUsage_BothWarnings(t *testing.T) {
	log, logs := captureLogger()
	r := New(log, &bytes.Buffer{}, false)

	r.Pair(testPair(
		[]quota.UsageRecord{{Name: "X", CurrentValue: 3}},
		[]quota.QuotaRecord{{Name: "X", Limit: 0}},
		80,
	))

	got := logs.String()
	if !strings.Contains(got, "ZERO QUOTA WITH USAGE: 'X' Usage: 3, Quota: 0") {
		t.Errorf("log missing zero quota warning:\n%s", got)
	}
	if !strings.Contains(got, "NEARING OR ABOVE LIMIT: 'X' Usage: 3, Quota: 0, Percentage: +Inf%") {
		t.Errorf("log missing infinite percentage warning:\n%s", got)
	}
	if !strings.Contains(got, "1 out of 1 are nearing limit") {
		t.Errorf("log missing summary line:\n%s", got)
	}
}

func TestReporter_Pair_Detailed_RendersTable(t *testing.T) {
	log, _ := captureLogger()
	out := &bytes.Buffer{}
	r := New(log, out, true)

	r.Pair(testPair(
		[]quota.UsageRecord{
			{Name: "Public IP Addresses", CurrentValue: 6},
			{Name: "Orphan", CurrentValue: 2},
		},
		[]quota.QuotaRecord{{Name: "Public IP Addresses", Limit: 250}},
		80,
	))

	got := out.String()
	if !strings.Contains(got, "Subscription prod, Microsoft.Network in eastus:") {
		t.Errorf("table output missing pair heading:\n%s", got)
	}
	if !strings.Contains(got, "RESOURCE") {
		t.Errorf("table output missing header row:\n%s", got)
	}
	if !strings.Contains(got, "Public IP Addresses") || !strings.Contains(got, "2.4") {
		t.Errorf("table output missing matched resource row:\n%s", got)
	}
	if !strings.Contains(got, "Orphan") || !strings.Contains(got, "NO QUOTA") {
		t.Errorf("table output missing unmatched resource row:\n%s", got)
	}
}

func TestReporter_Pair_Detailed_EmptyPair_NoTable(t *testing.T) {
	log, _ := captureLogger()
	out := &bytes.Buffer{}
	r := New(log, out, true)

	r.Pair(testPair(nil, nil, 80))

	if out.Len() != 0 {
		t.Errorf("out = %q, want empty for a pair with no resources", out.String())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{6, "6"},
		{2.4, "2.4"},
		{100, "100"},
		{0, "0"},
		{0.5, "0.5"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
