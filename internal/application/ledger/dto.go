package ledger

import (
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
)

// ===================== Request DTOs =====================

// SummaryRequest asks for the financial summary of one apartment.
// Dates are inclusive calendar days; a nil IncludeCompanyPaid uses the configured policy.
type SummaryRequest struct {
	ApartmentID               int64      `json:"apartment_id" validate:"required,gt=0"`
	DateFrom                  *time.Time `json:"date_from,omitempty"`
	DateTo                    *time.Time `json:"date_to,omitempty"`
	IncludeRenterTransactions bool       `json:"include_renter_transactions"`
	IncludeCompanyPaid        *bool      `json:"include_company_paid,omitempty"`
}

// Filter returns the transaction filter the request describes
func (r SummaryRequest) Filter() ledger.TransactionFilter {
	return ledger.TransactionFilter{
		DateFrom:                  r.DateFrom,
		DateTo:                    r.DateTo,
		IncludeRenterTransactions: r.IncludeRenterTransactions,
	}
}

// ===================== Response DTOs =====================

// SummaryResult is the aggregated view of an apartment's transactions.
//
// Summary covers the reporting window. Opening covers everything before DateFrom and is
// nil when no DateFrom was given. Cumulative is Opening combined with Summary.
type SummaryResult struct {
	ApartmentID         int64                         `json:"apartment_id"`
	DateFrom            *time.Time                    `json:"date_from,omitempty"`
	DateTo              *time.Time                    `json:"date_to,omitempty"`
	Summary             ledger.FinancialSummary       `json:"summary"`
	Opening             *ledger.FinancialSummary      `json:"opening_balance,omitempty"`
	Cumulative          ledger.FinancialSummary       `json:"cumulative"`
	Totals              ledger.PeriodizedTotals       `json:"totals"`
	Ledger              []ledger.Row                  `json:"ledger"`
	Entries             []ledger.Entry                `json:"-"`
	Skipped             []ledger.MalformedRecordError `json:"skipped,omitempty"`
	SkippedCount        int                           `json:"skipped_count"`
	Failures            []*ledger.SourceFailure       `json:"failures,omitempty"`
	Partial             bool                          `json:"partial"`
	ExcludedCompanyPaid int                           `json:"excluded_company_paid"`
	GeneratedAt         time.Time                     `json:"generated_at"`
}

// FailedKinds lists the source kinds whose fetch failed
func (r *SummaryResult) FailedKinds() []ledger.SourceKind {
	kinds := make([]ledger.SourceKind, 0, len(r.Failures))
	for _, f := range r.Failures {
		kinds = append(kinds, f.Kind)
	}
	return kinds
}

// StatementResult is the owner transactions table with running balances
type StatementResult struct {
	ApartmentID  int64                   `json:"apartment_id"`
	Rows         []ledger.Row            `json:"rows"`
	SkippedCount int                     `json:"skipped_count"`
	Failures     []*ledger.SourceFailure `json:"failures,omitempty"`
	Partial      bool                    `json:"partial"`
}
