package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/telemetry"
)

// sourceResult is what one source kind contributes to a summary
type sourceResult struct {
	kind    ledger.SourceKind
	entries []ledger.Entry
	skipped []ledger.MalformedRecordError
	fetched int
	failure *ledger.SourceFailure
}

// fetchWithTimeout runs fn under its own deadline. The caller is released when the
// deadline passes even if fn ignores cancellation; a panic in fn becomes an error.
func fetchWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) ([]T, error)) ([]T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		records []T
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("collaborator panicked: %v", r)}
			}
		}()
		records, err := fn(ctx)
		done <- outcome{records: records, err: err}
	}()

	select {
	case o := <-done:
		return o.records, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// collect fetches one source kind and normalizes its records, keeping the malformed ones aside
func collect[T any](
	ctx context.Context,
	kind ledger.SourceKind,
	timeout time.Duration,
	fetch func(context.Context) ([]T, error),
	normalize func(T) (ledger.Entry, error),
) sourceResult {
	ctx, span := telemetry.StartSpan(ctx, "ledger.fetch."+kindSpanName(kind),
		telemetry.WithAttribute(telemetry.SpanAttrSourceKind, kind.String()))
	defer span.End()

	res := sourceResult{kind: kind}
	records, err := fetchWithTimeout(ctx, timeout, fetch)
	if err != nil {
		res.failure = &ledger.SourceFailure{Kind: kind, Err: err}
		telemetry.RecordError(span, res.failure)
		return res
	}

	res.fetched = len(records)
	res.entries = make([]ledger.Entry, 0, len(records))
	for _, rec := range records {
		entry, err := normalize(rec)
		if err != nil {
			var mr *ledger.MalformedRecordError
			if errors.As(err, &mr) {
				res.skipped = append(res.skipped, *mr)
				continue
			}
			res.skipped = append(res.skipped, ledger.MalformedRecordError{Kind: kind, Reason: err.Error()})
			continue
		}
		res.entries = append(res.entries, entry)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrRecordCount, res.fetched,
		telemetry.SpanAttrSkippedCount, len(res.skipped),
	)
	return res
}

func kindSpanName(kind ledger.SourceKind) string {
	switch kind {
	case ledger.SourceKindPayment:
		return "payments"
	case ledger.SourceKindServiceCharge:
		return "service_charges"
	case ledger.SourceKindUtilityCharge:
		return "utility_charges"
	default:
		return "unknown"
	}
}
