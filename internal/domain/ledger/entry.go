package ledger

import (
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
)

// Direction is the side of the ledger an entry lands on
type Direction string

const (
	// Credit is money received; it reduces the outstanding balance
	Credit Direction = "CREDIT"
	// Debit is money owed; it increases the outstanding balance
	Debit Direction = "DEBIT"
)

// DirectionFor returns the fixed direction of a source kind.
// Payments are credits, service and utility charges are debits.
func DirectionFor(kind SourceKind) Direction {
	if kind == SourceKindPayment {
		return Credit
	}
	return Debit
}

// Period is an optional reading period attached to utility entries
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Entry is the canonical ledger entry every source record is normalized into
type Entry struct {
	SourceKind       SourceKind        `json:"source_kind"`
	SourceID         int64             `json:"source_id"`
	Direction        Direction         `json:"direction"`
	Money            valueobject.Money `json:"money"`
	OccurredAt       time.Time         `json:"occurred_at"`
	ApartmentID      int64             `json:"apartment_id"`
	CounterpartyID   int64             `json:"counterparty_id"`
	CounterpartyName string            `json:"counterparty_name,omitempty"`
	BookingRef       *int64            `json:"booking_ref,omitempty"`
	PayerType        PayerType         `json:"payer_type"`
	Description      string            `json:"description"`
	Utility          UtilityType       `json:"utility,omitempty"`
	Period           *Period           `json:"period,omitempty"`

	// CompanyCovered marks the offsetting credit of a company-paid charge
	CompanyCovered bool `json:"company_covered,omitempty"`
}

// Currency is a shortcut for the entry's money currency
func (e Entry) Currency() valueobject.Currency {
	return e.Money.Currency()
}

// IsDebit returns true for entries that increase the outstanding balance
func (e Entry) IsDebit() bool {
	return e.Direction == Debit
}
