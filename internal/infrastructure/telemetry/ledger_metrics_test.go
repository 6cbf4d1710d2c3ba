package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewLedgerMetrics(nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestLedgerMetrics_Record(t *testing.T) {
	reader, mp := newTestMeter(t)
	m, err := telemetry.NewLedgerMetrics(mp.Meter("ledger"))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordSummary(ctx, true, 12*time.Millisecond)
	m.RecordSummary(ctx, false, 3*time.Millisecond)
	m.RecordMalformed(ctx, "PAYMENT", 2)
	m.RecordMalformed(ctx, "PAYMENT", 0)
	m.RecordSourceFailure(ctx, "SERVICE_CHARGE")
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)
	m.RecordRefresh(ctx, errors.New("boom"))

	rm := collect(t, reader)
	for name, want := range map[string]int64{
		"ledger_summaries_total":         2,
		"ledger_malformed_records_total": 2,
		"ledger_source_failures_total":   1,
		"occupancy_cache_lookups_total":  2,
		"occupancy_refreshes_total":      1,
	} {
		metric, ok := findMetric(rm, name)
		require.True(t, ok, name)
		assert.Equal(t, want, sumOf(t, metric), name)
	}

	hm, ok := findMetric(rm, "ledger_summary_duration_ms")
	require.True(t, ok)
	hist := hm.Data.(metricdata.Histogram[float64])
	assert.Len(t, hist.DataPoints, 2) // one per partial label
}

func TestLedgerMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.LedgerMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordSummary(ctx, false, time.Second)
		m.RecordMalformed(ctx, "PAYMENT", 1)
		m.RecordSourceFailure(ctx, "PAYMENT")
		m.RecordCacheLookup(ctx, true)
		m.RecordRefresh(ctx, nil)
	})
}
