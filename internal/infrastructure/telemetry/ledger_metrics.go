package telemetry

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is created without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// LedgerMetrics instruments ledger summaries and occupancy lookups.
// A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	summariesTotal        *Counter
	malformedRecordsTotal *Counter
	sourceFailuresTotal   *Counter
	summaryDuration       *Histogram
	cacheLookupsTotal     *Counter
	refreshesTotal        *Counter
}

// NewLedgerMetrics creates the ledger and occupancy instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error
	if m.summariesTotal, err = NewCounter(meter,
		"ledger_summaries_total", "Ledger summaries produced, by partial flag", "{summary}"); err != nil {
		return nil, err
	}
	if m.malformedRecordsTotal, err = NewCounter(meter,
		"ledger_malformed_records_total", "Source records skipped as malformed, by source kind", "{record}"); err != nil {
		return nil, err
	}
	if m.sourceFailuresTotal, err = NewCounter(meter,
		"ledger_source_failures_total", "Source fetches that failed or timed out, by source kind", "{fetch}"); err != nil {
		return nil, err
	}
	if m.summaryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_summary_duration_ms",
		Description: "Ledger summary latency in milliseconds",
		Unit:        "ms",
		Boundaries:  SummaryDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.cacheLookupsTotal, err = NewCounter(meter,
		"occupancy_cache_lookups_total", "Occupancy projection cache lookups, by result", "{lookup}"); err != nil {
		return nil, err
	}
	if m.refreshesTotal, err = NewCounter(meter,
		"occupancy_refreshes_total", "Occupancy projection refreshes, by outcome", "{refresh}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSummary records one produced summary and its latency
func (m *LedgerMetrics) RecordSummary(ctx context.Context, partial bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	p := AttrPartial.String(strconv.FormatBool(partial))
	m.summariesTotal.Inc(ctx, p)
	m.summaryDuration.RecordMillis(ctx, elapsed, p)
}

// RecordMalformed records skipped records of one source kind
func (m *LedgerMetrics) RecordMalformed(ctx context.Context, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.malformedRecordsTotal.Add(ctx, int64(n), AttrSourceKind.String(kind))
}

// RecordSourceFailure records a failed fetch of one source kind
func (m *LedgerMetrics) RecordSourceFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.sourceFailuresTotal.Inc(ctx, AttrSourceKind.String(kind))
}

// RecordCacheLookup records an occupancy cache hit or miss
func (m *LedgerMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.Inc(ctx, AttrCacheResult.String(result))
}

// RecordRefresh records an occupancy projection refresh
func (m *LedgerMetrics) RecordRefresh(ctx context.Context, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.refreshesTotal.Inc(ctx, AttrOutcome.String(outcome))
}
