package ledger

import (
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CurrencyAmounts maps a currency to a single amount
type CurrencyAmounts map[valueobject.Currency]decimal.Decimal

// FinancialSummary is the per-currency spent/requested/net view of a set of entries.
// NetMoney = TotalMoneyRequested - TotalMoneySpent for every currency.
type FinancialSummary struct {
	TotalMoneySpent     CurrencyAmounts `json:"total_money_spent"`
	TotalMoneyRequested CurrencyAmounts `json:"total_money_requested"`
	NetMoney            CurrencyAmounts `json:"net_money"`
}

// SummaryFromTotals derives a summary: credits are money spent, debits are money requested
func SummaryFromTotals(totals CurrencyTotals) FinancialSummary {
	s := FinancialSummary{
		TotalMoneySpent:     make(CurrencyAmounts, len(totals)),
		TotalMoneyRequested: make(CurrencyAmounts, len(totals)),
		NetMoney:            make(CurrencyAmounts, len(totals)),
	}
	for c, sums := range totals {
		s.TotalMoneySpent[c] = sums.Credit
		s.TotalMoneyRequested[c] = sums.Debit
		s.NetMoney[c] = sums.Net()
	}
	return s
}

// Combine adds another summary currency by currency (e.g. opening + within for a
// cumulative full-history view). Net stays debits minus credits.
func (s FinancialSummary) Combine(other FinancialSummary) FinancialSummary {
	return FinancialSummary{
		TotalMoneySpent:     addAmounts(s.TotalMoneySpent, other.TotalMoneySpent),
		TotalMoneyRequested: addAmounts(s.TotalMoneyRequested, other.TotalMoneyRequested),
		NetMoney:            addAmounts(s.NetMoney, other.NetMoney),
	}
}

func addAmounts(a, b CurrencyAmounts) CurrencyAmounts {
	out := make(CurrencyAmounts, len(a)+len(b))
	for c, v := range a {
		out[c] = v
	}
	for c, v := range b {
		out[c] = out[c].Add(v)
	}
	return out
}
