package core

import "fmt"

// Summary aggregates the visible expense list.
type Summary struct {
	Count  int
	Total  Money
	Hidden int
}

// Summarize computes the summary of the expenses visible under f.
func Summarize(all []Expense, f Filters) Summary {
	visible := VisibleExpenses(all, f)
	return Summary{
		Count:  len(visible),
		Total:  ExpensesTotal(visible),
		Hidden: len(all) - len(visible),
	}
}

// Headline is the one-line description shown above the list.
func (s Summary) Headline() string {
	word := "expenses"
	if s.Count == 1 {
		word = "expense"
	}
	return fmt.Sprintf("Viewing %d %s totalling %s", s.Count, word, s.Total)
}
