package ledger

import "time"

// PeriodizedTotals holds opening (before the boundary) and in-window totals
type PeriodizedTotals struct {
	Before CurrencyTotals `json:"before"`
	Within CurrencyTotals `json:"within"`
}

// Day truncates t to its calendar day in UTC. Ledger dates are compared at day granularity.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Split partitions entries around boundary. An entry dated strictly before the
// boundary day goes to before; an entry on the boundary day or later goes to within.
// A nil boundary puts every entry in within. Input order is preserved on both sides.
// The boundary day always belongs to within; there is no option to move it to before.
func Split(entries []Entry, boundary *time.Time) (before, within []Entry) {
	if boundary == nil {
		return nil, append([]Entry(nil), entries...)
	}
	b := Day(*boundary)
	for _, e := range entries {
		if Day(e.OccurredAt).Before(b) {
			before = append(before, e)
		} else {
			within = append(within, e)
		}
	}
	return before, within
}

// Through keeps entries dated on or before the end day. A nil end keeps everything.
func Through(entries []Entry, end *time.Time) []Entry {
	if end == nil {
		return entries
	}
	last := Day(*end)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !Day(e.OccurredAt).After(last) {
			out = append(out, e)
		}
	}
	return out
}

// Periodize splits entries and accumulates each side
func Periodize(entries []Entry, boundary *time.Time) PeriodizedTotals {
	before, within := Split(entries, boundary)
	return PeriodizedTotals{
		Before: Accumulate(before),
		Within: Accumulate(within),
	}
}
