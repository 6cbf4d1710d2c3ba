package ledger

import (
	"iter"
	"slices"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Sums holds the debit and credit totals of a single currency
type Sums struct {
	Debit  decimal.Decimal `json:"debit_sum"`
	Credit decimal.Decimal `json:"credit_sum"`
}

// Net returns debit minus credit (the outstanding amount)
func (s Sums) Net() decimal.Decimal {
	return s.Debit.Sub(s.Credit)
}

// Add returns the element-wise sum
func (s Sums) Add(other Sums) Sums {
	return Sums{Debit: s.Debit.Add(other.Debit), Credit: s.Credit.Add(other.Credit)}
}

// CurrencyTotals keeps one independent Sums per currency.
// A currency is present only if an entry in it was accumulated or zero-fill was requested.
type CurrencyTotals map[valueobject.Currency]Sums

// Accumulate sums entries per currency in a single pass
func Accumulate(entries []Entry) CurrencyTotals {
	return AccumulateSeq(slices.Values(entries))
}

// AccumulateSeq sums a sequence of entries per currency in a single pass
func AccumulateSeq(entries iter.Seq[Entry]) CurrencyTotals {
	totals := CurrencyTotals{}
	for e := range entries {
		totals.add(e)
	}
	return totals
}

func (t CurrencyTotals) add(e Entry) {
	s := t[e.Currency()]
	if e.IsDebit() {
		s.Debit = s.Debit.Add(e.Money.Amount())
	} else {
		s.Credit = s.Credit.Add(e.Money.Amount())
	}
	t[e.Currency()] = s
}

// Merge combines two partial results into a new map. Merge is commutative and
// associative, so shards may be merged in any order.
func (t CurrencyTotals) Merge(other CurrencyTotals) CurrencyTotals {
	out := make(CurrencyTotals, len(t)+len(other))
	for c, s := range t {
		out[c] = s
	}
	for c, s := range other {
		out[c] = out[c].Add(s)
	}
	return out
}

// MergeAll merges any number of partial results
func MergeAll(parts ...CurrencyTotals) CurrencyTotals {
	out := CurrencyTotals{}
	for _, p := range parts {
		out = out.Merge(p)
	}
	return out
}

// ZeroFill returns a copy that also carries a zero entry for each listed currency
func (t CurrencyTotals) ZeroFill(currencies ...valueobject.Currency) CurrencyTotals {
	out := t.Merge(nil)
	for _, c := range currencies {
		if _, ok := out[c]; !ok {
			out[c] = Sums{Debit: decimal.Zero, Credit: decimal.Zero}
		}
	}
	return out
}

// Currencies returns the present currencies in canonical order
func (t CurrencyTotals) Currencies() []valueobject.Currency {
	out := make([]valueobject.Currency, 0, len(t))
	for _, c := range valueobject.SupportedCurrencies() {
		if _, ok := t[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the sums of a currency, zero if absent
func (t CurrencyTotals) Get(c valueobject.Currency) Sums {
	return t[c]
}
