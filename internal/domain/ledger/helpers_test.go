package ledger

import (
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

func entryOf(kind SourceKind, id int64, amt string, c valueobject.Currency, on time.Time) Entry {
	return Entry{
		SourceKind:  kind,
		SourceID:    id,
		Direction:   DirectionFor(kind),
		Money:       valueobject.MustMoney(amt, c),
		OccurredAt:  on,
		ApartmentID: 10,
		PayerType:   PayerOwner,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
