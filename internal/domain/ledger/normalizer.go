package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizePayment converts a payment into a credit entry
func NormalizePayment(rec PaymentRecord) (Entry, error) {
	kind := SourceKindPayment
	if err := checkCommon(kind, rec.ID, rec.ApartmentID, rec.Date); err != nil {
		return Entry{}, err
	}
	if rec.PayerType != PayerOwner && rec.PayerType != PayerRenter {
		return Entry{}, malformed(kind, rec.ID, "invalid payer user type %q", rec.PayerType)
	}
	money, err := positiveMoney(kind, rec.ID, rec.Amount, rec.Currency, false)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		SourceKind:       kind,
		SourceID:         rec.ID,
		Direction:        DirectionFor(kind),
		Money:            money,
		OccurredAt:       rec.Date,
		ApartmentID:      rec.ApartmentID,
		CounterpartyID:   rec.PayerID,
		CounterpartyName: rec.PayerName,
		BookingRef:       rec.BookingID,
		PayerType:        rec.PayerType,
		Description:      paymentDescription(rec),
	}, nil
}

// NormalizeServiceCharge converts an already-priced service request into a debit entry.
// The entry is dated on the action date when one is set, else on the request date.
func NormalizeServiceCharge(rec ServiceChargeRecord) (Entry, error) {
	kind := SourceKindServiceCharge
	occurredAt := rec.RequestedAt
	if rec.ActionDate != nil && !rec.ActionDate.IsZero() {
		occurredAt = *rec.ActionDate
	}
	if err := checkCommon(kind, rec.ID, rec.ApartmentID, occurredAt); err != nil {
		return Entry{}, err
	}
	if !rec.WhoPays.IsValid() {
		return Entry{}, malformed(kind, rec.ID, "invalid who_pays %q", rec.WhoPays)
	}
	money, err := positiveMoney(kind, rec.ID, rec.Cost, rec.Currency, false)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		SourceKind:       kind,
		SourceID:         rec.ID,
		Direction:        DirectionFor(kind),
		Money:            money,
		OccurredAt:       occurredAt,
		ApartmentID:      rec.ApartmentID,
		CounterpartyID:   rec.RequesterID,
		CounterpartyName: rec.RequesterName,
		BookingRef:       rec.BookingID,
		PayerType:        rec.WhoPays,
		Description:      serviceDescription(rec),
	}, nil
}

// NormalizeUtilityCharge converts a utility cost into a debit entry dated on the
// end of its reading period. A missing currency defaults to the local currency.
func NormalizeUtilityCharge(rec UtilityChargeRecord) (Entry, error) {
	kind := SourceKindUtilityCharge
	if err := checkCommon(kind, rec.ReadingID, rec.ApartmentID, rec.EndDate); err != nil {
		return Entry{}, err
	}
	if rec.StartDate.IsZero() {
		return Entry{}, malformed(kind, rec.ReadingID, "missing reading start date")
	}
	if rec.EndDate.Before(rec.StartDate) {
		return Entry{}, malformed(kind, rec.ReadingID, "reading end %s before start %s",
			rec.EndDate.Format(time.DateOnly), rec.StartDate.Format(time.DateOnly))
	}
	if !rec.Utility.IsValid() {
		return Entry{}, malformed(kind, rec.ReadingID, "invalid utility type %q", rec.Utility)
	}
	if !rec.WhoPays.IsValid() {
		return Entry{}, malformed(kind, rec.ReadingID, "invalid who_pays %q", rec.WhoPays)
	}
	money, err := positiveMoney(kind, rec.ReadingID, rec.Cost, rec.Currency, true)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		SourceKind:       kind,
		SourceID:         rec.ReadingID,
		Direction:        DirectionFor(kind),
		Money:            money,
		OccurredAt:       rec.EndDate,
		ApartmentID:      rec.ApartmentID,
		CounterpartyID:   rec.PayerID,
		CounterpartyName: rec.PayerName,
		BookingRef:       rec.BookingID,
		PayerType:        rec.WhoPays,
		Description:      utilityDescription(rec),
		Utility:          rec.Utility,
		Period:           &Period{Start: rec.StartDate, End: rec.EndDate},
	}, nil
}

// CompanyCoverFor returns the zero-net credit that offsets a company-paid charge
func CompanyCoverFor(charge Entry) Entry {
	cover := charge
	cover.Direction = Credit
	cover.CompanyCovered = true
	cover.CounterpartyID = 0
	cover.CounterpartyName = "Company"
	cover.Description = "Covered by company: " + charge.Description
	return cover
}

func checkCommon(kind SourceKind, id, apartmentID int64, date time.Time) error {
	if apartmentID <= 0 {
		return malformed(kind, id, "missing apartment reference")
	}
	if date.IsZero() {
		return malformed(kind, id, "missing date")
	}
	return nil
}

// positiveMoney validates a record amount. Stored amounts must already be in cents;
// derived costs (meter delta times unit price) are rounded to cents and default to
// the local currency.
func positiveMoney(kind SourceKind, id int64, amount decimal.NullDecimal, code string, derived bool) (valueobject.Money, error) {
	if !amount.Valid {
		return valueobject.Money{}, malformed(kind, id, "missing amount")
	}
	if !derived && !amount.Decimal.Equal(amount.Decimal.Round(valueobject.MoneyScale)) {
		return valueobject.Money{}, malformed(kind, id, "amount %s has more than %d fractional digits",
			amount.Decimal.String(), valueobject.MoneyScale)
	}
	if code == "" && derived {
		code = string(valueobject.DefaultCurrency)
	}
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return valueobject.Money{}, malformed(kind, id, "%v", err)
	}
	money, err := valueobject.NewPositiveMoney(amount.Decimal, currency)
	if err != nil {
		return valueobject.Money{}, malformed(kind, id, "%v", err)
	}
	return money, nil
}

func paymentDescription(rec PaymentRecord) string {
	parts := []string{"Payment"}
	if rec.Method != "" {
		parts = append(parts, "via "+rec.Method)
	}
	desc := strings.Join(parts, " ")
	if rec.Description != "" {
		desc += ": " + rec.Description
	}
	return desc
}

func serviceDescription(rec ServiceChargeRecord) string {
	name := strings.TrimSpace(rec.ServiceTypeName)
	if name == "" {
		return "Service request"
	}
	return cases.Title(language.English).String(name)
}

func utilityDescription(rec UtilityChargeRecord) string {
	label := cases.Title(language.English).String(string(rec.Utility))
	return fmt.Sprintf("%s bill (%s to %s)", label,
		rec.StartDate.Format(time.DateOnly), rec.EndDate.Format(time.DateOnly))
}
