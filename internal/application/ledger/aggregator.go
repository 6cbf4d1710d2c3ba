package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/logger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Config holds aggregator settings
type Config struct {
	// FetchTimeout bounds each source fetch; zero means no bound beyond the caller's context
	FetchTimeout time.Duration
	// IncludeCompanyPaid records company-paid charges as zero-net pairs instead of excluding them
	IncludeCompanyPaid bool
	// ReportCurrencies are listed in every summary when ZeroFill is set
	ReportCurrencies []valueobject.Currency
	ZeroFill         bool
}

// DefaultConfig returns the default aggregator settings
func DefaultConfig() Config {
	return Config{
		FetchTimeout:     5 * time.Second,
		ReportCurrencies: valueobject.SupportedCurrencies(),
		ZeroFill:         true,
	}
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *telemetry.LedgerMetrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithApartments makes Summarize and Statement reject apartments the directory does not know
func WithApartments(d ledger.ApartmentDirectory) Option {
	return func(a *Aggregator) {
		a.apartments = d
	}
}

// WithClock overrides the clock used for GeneratedAt and open-ended statements
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator merges payments, service charges and utility charges of an apartment
// into one per-currency summary and ledger. It keeps no state between calls.
type Aggregator struct {
	payments   ledger.PaymentSource
	services   ledger.ServiceChargeSource
	utilities  ledger.UtilityChargeSource
	apartments ledger.ApartmentDirectory
	cfg        Config
	validate   *validator.Validate
	logger     *zap.Logger
	metrics    *telemetry.LedgerMetrics
	now        func() time.Time
}

// NewAggregator creates a new Aggregator
func NewAggregator(
	payments ledger.PaymentSource,
	services ledger.ServiceChargeSource,
	utilities ledger.UtilityChargeSource,
	cfg Config,
	opts ...Option,
) *Aggregator {
	a := &Aggregator{
		payments:  payments,
		services:  services,
		utilities: utilities,
		cfg:       cfg,
		validate:  newValidator(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize fetches every source kind concurrently and aggregates the result.
//
// An invalid request, or an apartment unknown to the directory, is rejected before any
// fetch. A failed or timed out source kind contributes nothing and marks the result
// partial. Malformed records are skipped and reported. No other error is returned.
func (a *Aggregator) Summarize(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
	if err := validateRequest(a.validate, req); err != nil {
		return nil, err
	}
	if err := a.checkApartment(ctx, req.ApartmentID); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx = logger.WithApartmentID(ctx, req.ApartmentID)
	ctx, span := telemetry.StartSpan(ctx, "ledger.summarize",
		telemetry.WithAttribute(telemetry.SpanAttrApartmentID, req.ApartmentID),
		telemetry.WithAttribute(telemetry.SpanAttrIncludeRenters, req.IncludeRenterTransactions),
	)
	defer span.End()
	if req.DateFrom != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrDateFrom, req.DateFrom.Format(time.DateOnly))
	}
	if req.DateTo != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrDateTo, req.DateTo.Format(time.DateOnly))
	}

	var result *SummaryResult
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("ledger", "summarize"), func(ctx context.Context) {
		result = a.summarize(ctx, req)
	})

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartial, result.Partial,
		telemetry.SpanAttrSkippedCount, result.SkippedCount,
	)
	a.metrics.RecordSummary(ctx, result.Partial, time.Since(start))
	logger.WithLogger(ctx, a.logger).Debug("ledger summary computed",
		zap.Int("entries", len(result.Entries)),
		zap.Int("skipped", result.SkippedCount),
		zap.Bool("partial", result.Partial),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// Statement returns the within-period entries oldest first with running balances,
// followed by opening and closing balance rows per currency
func (a *Aggregator) Statement(ctx context.Context, req SummaryRequest) (*StatementResult, error) {
	res, err := a.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}

	var openingDate *time.Time
	if req.DateFrom != nil {
		d := ledger.Day(*req.DateFrom)
		openingDate = &d
	}
	closingDate := ledger.Day(res.GeneratedAt)
	if req.DateTo != nil {
		closingDate = ledger.Day(*req.DateTo)
	}

	stmt := ledger.BuildStatement(res.Totals.Before, res.Entries, a.fillCurrencies(), openingDate, closingDate)
	return &StatementResult{
		ApartmentID:  req.ApartmentID,
		Rows:         stmt.Rows,
		SkippedCount: res.SkippedCount,
		Failures:     res.Failures,
		Partial:      res.Partial,
	}, nil
}

func (a *Aggregator) checkApartment(ctx context.Context, apartmentID int64) error {
	if a.apartments == nil {
		return nil
	}
	exists, err := a.apartments.Exists(ctx, apartmentID)
	if err != nil {
		return shared.ErrCollaboratorUnavailable.Wrap(err)
	}
	if !exists {
		return shared.ErrNotFound.WithMessage(fmt.Sprintf("apartment %d not found", apartmentID))
	}
	return nil
}

func (a *Aggregator) summarize(ctx context.Context, req SummaryRequest) *SummaryResult {
	// History before DateFrom is fetched too so the opening balance can be computed.
	fetchFilter := ledger.TransactionFilter{
		DateTo:                    req.DateTo,
		IncludeRenterTransactions: req.IncludeRenterTransactions,
	}
	results := a.fetchAll(ctx, req.ApartmentID, fetchFilter)

	out := &SummaryResult{
		ApartmentID: req.ApartmentID,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		GeneratedAt: a.now().UTC(),
	}

	includeCompany := a.cfg.IncludeCompanyPaid
	if req.IncludeCompanyPaid != nil {
		includeCompany = *req.IncludeCompanyPaid
	}

	var entries []ledger.Entry
	for _, r := range results {
		if failure := r.failure; failure != nil {
			out.Failures = append(out.Failures, failure)
			out.Partial = true
			a.metrics.RecordSourceFailure(ctx, r.kind.String())
			logger.WithLogger(ctx, a.logger).Warn("source fetch failed, continuing without it",
				zap.String("kind", r.kind.String()),
				zap.Error(failure.Err),
			)
			continue
		}

		for _, mr := range r.skipped {
			logger.WithLogger(ctx, a.logger).Warn("skipping malformed record",
				zap.String("kind", mr.Kind.String()),
				zap.Int64("record_id", mr.RecordID),
				zap.String("reason", mr.Reason),
			)
		}
		if len(r.skipped) > 0 {
			a.metrics.RecordMalformed(ctx, r.kind.String(), len(r.skipped))
		}
		out.Skipped = append(out.Skipped, r.skipped...)

		for _, e := range r.entries {
			if !req.IncludeRenterTransactions && e.PayerType == ledger.PayerRenter {
				continue
			}
			if e.PayerType == ledger.PayerCompany {
				if !includeCompany {
					out.ExcludedCompanyPaid++
					continue
				}
				entries = append(entries, e, ledger.CompanyCoverFor(e))
				continue
			}
			entries = append(entries, e)
		}
	}
	out.SkippedCount = len(out.Skipped)

	entries = ledger.Through(entries, req.DateTo)
	before, within := ledger.Split(entries, req.DateFrom)

	currencies := a.fillCurrencies()
	out.Totals = ledger.PeriodizedTotals{
		Before: ledger.Accumulate(before).ZeroFill(currencies...),
		Within: ledger.Accumulate(within).ZeroFill(currencies...),
	}
	out.Summary = ledger.SummaryFromTotals(out.Totals.Within)
	out.Cumulative = out.Summary
	if req.DateFrom != nil {
		opening := ledger.SummaryFromTotals(out.Totals.Before)
		out.Opening = &opening
		out.Cumulative = opening.Combine(out.Summary)
	}

	out.Entries = within
	out.Ledger = ledger.Rows(within)
	return out
}

// fetchAll issues the three source fetches concurrently and returns results in fetch order
func (a *Aggregator) fetchAll(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) []sourceResult {
	timeout := a.cfg.FetchTimeout
	results := make([]sourceResult, 3)

	var wg sync.WaitGroup
	wg.Go(func() {
		results[0] = collect(ctx, ledger.SourceKindPayment, timeout,
			func(ctx context.Context) ([]ledger.PaymentRecord, error) {
				return a.payments.FetchPayments(ctx, apartmentID, filter)
			},
			ledger.NormalizePayment)
	})
	wg.Go(func() {
		results[1] = collect(ctx, ledger.SourceKindServiceCharge, timeout,
			func(ctx context.Context) ([]ledger.ServiceChargeRecord, error) {
				return a.services.FetchServiceCharges(ctx, apartmentID, filter)
			},
			ledger.NormalizeServiceCharge)
	})
	wg.Go(func() {
		results[2] = collect(ctx, ledger.SourceKindUtilityCharge, timeout,
			func(ctx context.Context) ([]ledger.UtilityChargeRecord, error) {
				return a.utilities.FetchUtilityCharges(ctx, apartmentID, filter)
			},
			ledger.NormalizeUtilityCharge)
	})
	wg.Wait()
	return results
}

func (a *Aggregator) fillCurrencies() []valueobject.Currency {
	if !a.cfg.ZeroFill {
		return nil
	}
	return a.cfg.ReportCurrencies
}
