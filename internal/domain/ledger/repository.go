package ledger

import (
	"context"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
)

// TransactionFilter defines the filters every source collaborator accepts
type TransactionFilter struct {
	DateFrom                  *time.Time // inclusive day
	DateTo                    *time.Time // inclusive day
	IncludeRenterTransactions bool       // owner-only when false
}

// Validate rejects a range whose end day precedes its start day
func (f TransactionFilter) Validate() error {
	if f.DateFrom != nil && f.DateTo != nil && Day(*f.DateTo).Before(Day(*f.DateFrom)) {
		return shared.ErrInvalidDateRange.WithMessage(
			"date_to " + f.DateTo.Format(time.DateOnly) + " is before date_from " + f.DateFrom.Format(time.DateOnly))
	}
	return nil
}

// PayerTypes returns the payer types a collaborator should return for this filter.
// Company-paid charges are always returned; the aggregator applies the company policy.
func (f TransactionFilter) PayerTypes() []PayerType {
	if f.IncludeRenterTransactions {
		return []PayerType{PayerOwner, PayerRenter, PayerCompany}
	}
	return []PayerType{PayerOwner, PayerCompany}
}

// ApartmentDirectory tells whether an apartment is known
type ApartmentDirectory interface {
	Exists(ctx context.Context, apartmentID int64) (bool, error)
}

// PaymentSource fetches payments for an apartment
type PaymentSource interface {
	FetchPayments(ctx context.Context, apartmentID int64, filter TransactionFilter) ([]PaymentRecord, error)
}

// ServiceChargeSource fetches priced service requests for an apartment
type ServiceChargeSource interface {
	FetchServiceCharges(ctx context.Context, apartmentID int64, filter TransactionFilter) ([]ServiceChargeRecord, error)
}

// UtilityChargeSource fetches per-utility costs of meter readings for an apartment
type UtilityChargeSource interface {
	FetchUtilityCharges(ctx context.Context, apartmentID int64, filter TransactionFilter) ([]UtilityChargeRecord, error)
}
