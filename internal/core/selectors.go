package core

import (
	"sort"
	"strings"
	"time"
)

// VisibleExpenses returns the expenses matching f, ordered by f.SortBy.
//
// Date bounds are inclusive and compared by calendar day in the bound's
// location. The text filter is a case-insensitive substring match on the
// description. Dates sort newest first and amounts largest first; ties keep
// their input order. The input slice is not modified.
func VisibleExpenses(expenses []Expense, f Filters) []Expense {
	text := strings.ToLower(f.Text)
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.StartDate != nil && !sameOrBeforeDay(*f.StartDate, e.CreatedAt, f.StartDate.Location()) {
			continue
		}
		if f.EndDate != nil && !sameOrBeforeDay(e.CreatedAt, *f.EndDate, f.EndDate.Location()) {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(e.Description), text) {
			continue
		}
		out = append(out, e)
	}

	switch f.SortBy {
	case SortByAmount:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Amount.Cents > out[j].Amount.Cents
		})
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// sameOrBeforeDay reports whether a falls on the same calendar day as b or
// earlier, with both read in loc.
func sameOrBeforeDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return !da.After(db)
}

// ExpensesTotal sums the amounts of expenses.
func ExpensesTotal(expenses []Expense) Money {
	var total int64
	for _, e := range expenses {
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}
