package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Row types that are not transactions
const (
	RowTypeOpeningBalance = "Opening balance"
	RowTypeClosingBalance = "Closing balance"
)

// Row is one line of the owner transactions table. Exactly one of DebitAmount and
// CreditAmount is set on transaction rows; balance rows carry both column totals.
// Date is nil only on the opening row of an unbounded history.
type Row struct {
	Type             string               `json:"type"`
	Description      string               `json:"description"`
	Currency         valueobject.Currency `json:"currency"`
	DebitAmount      *decimal.Decimal     `json:"debit_amount,omitempty"`
	CreditAmount     *decimal.Decimal     `json:"credit_amount,omitempty"`
	Date             *time.Time           `json:"date,omitempty"`
	CounterpartyName string               `json:"counterparty_name"`
	Balance          *decimal.Decimal     `json:"balance,omitempty"`
}

// Statement is the ascending owner statement with running balances
type Statement struct {
	Rows []Row `json:"rows"`
}

// SortNewestFirst orders entries by occurred_at descending with a deterministic tie-break
func SortNewestFirst(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return -compareEntries(a, b)
	})
}

// SortOldestFirst orders entries by occurred_at ascending with a deterministic tie-break
func SortOldestFirst(entries []Entry) {
	slices.SortStableFunc(entries, compareEntries)
}

func compareEntries(a, b Entry) int {
	if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
		return c
	}
	if c := cmp.Compare(kindRank(a.SourceKind), kindRank(b.SourceKind)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SourceID, b.SourceID); c != 0 {
		return c
	}
	// charge before its company cover
	return cmp.Compare(boolRank(a.CompanyCovered), boolRank(b.CompanyCovered))
}

func kindRank(k SourceKind) int {
	return slices.Index(AllSourceKinds(), k)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RowFor renders a ledger entry as a table row
func RowFor(e Entry) Row {
	amount := e.Money.Amount()
	occurredAt := e.OccurredAt
	row := Row{
		Type:             e.SourceKind.DisplayName(),
		Description:      e.Description,
		Currency:         e.Currency(),
		Date:             &occurredAt,
		CounterpartyName: e.CounterpartyName,
	}
	if e.IsDebit() {
		row.DebitAmount = &amount
	} else {
		row.CreditAmount = &amount
	}
	return row
}

// Rows renders entries newest first
func Rows(entries []Entry) []Row {
	sorted := append([]Entry(nil), entries...)
	SortNewestFirst(sorted)
	rows := make([]Row, len(sorted))
	for i, e := range sorted {
		rows[i] = RowFor(e)
	}
	return rows
}

// BuildStatement renders within-period entries oldest first with a running
// outstanding balance per currency seeded from the opening totals, then appends an
// opening and a closing balance row for each currency. Currencies with no opening
// and no in-period activity are listed only if named in currencies.
// Dates on balance rows are informational; a nil openingDate means unbounded history
// and leaves the opening rows undated.
func BuildStatement(opening CurrencyTotals, within []Entry, currencies []valueobject.Currency, openingDate *time.Time, closingDate time.Time) Statement {
	sorted := append([]Entry(nil), within...)
	SortOldestFirst(sorted)

	running := make(map[valueobject.Currency]decimal.Decimal, len(opening))
	for c, s := range opening {
		running[c] = s.Net()
	}

	rows := make([]Row, 0, len(sorted)+2*len(currencies))
	for _, e := range sorted {
		bal := running[e.Currency()]
		if e.IsDebit() {
			bal = bal.Add(e.Money.Amount())
		} else {
			bal = bal.Sub(e.Money.Amount())
		}
		running[e.Currency()] = bal

		row := RowFor(e)
		b := bal
		row.Balance = &b
		rows = append(rows, row)
	}

	closing := opening.Merge(Accumulate(sorted))
	order := closing.ZeroFill(currencies...).Currencies()
	for _, c := range order {
		open := opening.Get(c)
		end := closing.Get(c)
		rows = append(rows,
			balanceRow(RowTypeOpeningBalance, "Outstanding balance before period", c, open, openingDate),
			balanceRow(RowTypeClosingBalance, "Outstanding balance at period end", c, end, &closingDate),
		)
	}
	return Statement{Rows: rows}
}

func balanceRow(typ, desc string, c valueobject.Currency, s Sums, date *time.Time) Row {
	debit, credit, net := s.Debit, s.Credit, s.Net()
	return Row{
		Type:         typ,
		Description:  desc,
		Currency:     c,
		DebitAmount:  &debit,
		CreditAmount: &credit,
		Date:         copyTime(date),
		Balance:      &net,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
