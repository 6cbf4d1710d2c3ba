package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind identifies which kind of source record a ledger entry came from
type SourceKind string

const (
	SourceKindPayment       SourceKind = "PAYMENT"
	SourceKindServiceCharge SourceKind = "SERVICE_CHARGE"
	SourceKindUtilityCharge SourceKind = "UTILITY_CHARGE"
)

// AllSourceKinds returns every source kind in fetch order
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceKindPayment, SourceKindServiceCharge, SourceKindUtilityCharge}
}

// IsValid checks if the kind is known
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindPayment, SourceKindServiceCharge, SourceKindUtilityCharge:
		return true
	}
	return false
}

// String returns the string representation of SourceKind
func (k SourceKind) String() string {
	return string(k)
}

// DisplayName returns the label used in the owner transactions table
func (k SourceKind) DisplayName() string {
	switch k {
	case SourceKindPayment:
		return "Payment"
	case SourceKindServiceCharge:
		return "Service Request"
	case SourceKindUtilityCharge:
		return "Utility Reading"
	default:
		return string(k)
	}
}

// PayerType is who carries a transaction: the payment's payer or a charge's who_pays
type PayerType string

const (
	PayerOwner   PayerType = "owner"
	PayerRenter  PayerType = "renter"
	PayerCompany PayerType = "company"
)

// IsValid checks if the payer type is known
func (p PayerType) IsValid() bool {
	switch p {
	case PayerOwner, PayerRenter, PayerCompany:
		return true
	}
	return false
}

// UtilityType identifies a metered utility
type UtilityType string

const (
	UtilityWater       UtilityType = "water"
	UtilityElectricity UtilityType = "electricity"
)

// IsValid checks if the utility type is known
func (u UtilityType) IsValid() bool {
	return u == UtilityWater || u == UtilityElectricity
}

// PaymentRecord is a payment as returned by the payments collaborator.
// Amount is nullable so a missing value is detected instead of read as zero.
type PaymentRecord struct {
	ID          int64
	ApartmentID int64
	PayerID     int64
	PayerName   string
	PayerType   PayerType
	Amount      decimal.NullDecimal
	Currency    string
	Date        time.Time
	Method      string
	BookingID   *int64
	Description string
}

// ServiceChargeRecord is a service request already priced by the collaborator
// (per-request override cost, else the service type's price for the village).
type ServiceChargeRecord struct {
	ID              int64
	ApartmentID     int64
	BookingID       *int64
	ServiceTypeName string
	RequesterID     int64
	RequesterName   string
	WhoPays         PayerType
	Cost            decimal.NullDecimal
	Currency        string
	RequestedAt     time.Time
	ActionDate      *time.Time
	Notes           string
}

// UtilityChargeRecord is the cost of one utility over one meter reading period.
// Cost is computed upstream from the reading delta and the village unit price.
// An empty Currency means the implicit local currency.
type UtilityChargeRecord struct {
	ReadingID   int64
	ApartmentID int64
	BookingID   *int64
	Utility     UtilityType
	WhoPays     PayerType
	PayerID     int64
	PayerName   string
	Cost        decimal.NullDecimal
	Currency    string
	StartDate   time.Time
	EndDate     time.Time
}
