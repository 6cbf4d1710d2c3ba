package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		out[string(a.Key)] = a.Value
	}
	return out
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "ledger.summarize",
		telemetry.WithAttribute(telemetry.SpanAttrApartmentID, int64(7)),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ledger.summarize", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, int64(7), attrMap(spans[0].Attributes())[telemetry.SpanAttrApartmentID].AsInt64())
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "occupancy", "current_status")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "occupancy.current_status", sr.Ended()[0].Name())
}

func TestSpanHelpers(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.fetch.PAYMENT")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecordCount, 3,
		telemetry.SpanAttrPartial, true,
		42, "ignored",
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrSourceKind, "PAYMENT")
	telemetry.AddEvent(span, "record_skipped", "reason", "missing amount")
	telemetry.RecordError(span, errors.New("fetch failed"))
	telemetry.RecordError(span, nil)
	span.End()

	s := sr.Ended()[0]
	attrs := attrMap(s.Attributes())
	assert.Equal(t, int64(3), attrs[telemetry.SpanAttrRecordCount].AsInt64())
	assert.True(t, attrs[telemetry.SpanAttrPartial].AsBool())
	assert.Equal(t, "PAYMENT", attrs[telemetry.SpanAttrSourceKind].AsString())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "fetch failed", s.Status().Description)

	var names []string
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "record_skipped")
	assert.Contains(t, names, "exception")
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{ServiceName: "ledger-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.Error(t, tp.EnableSpanProfiles())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
