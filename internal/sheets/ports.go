// Package sheets mirrors each user's expenses into a spreadsheet.
package sheets

import (
	"context"
	"sort"

	"outlay/internal/core"
)

// Mirror receives the full list of a user's expenses after every change.
type Mirror interface {
	WriteSnapshot(ctx context.Context, uid string, expenses []core.Expense) error
}

// Header is the first row of every mirrored tab.
var Header = []any{"Date", "Description", "Note", "Amount", "ID"}

// TabName is the tab holding uid's expenses.
func TabName(uid string) string {
	return "Expenses-" + uid
}

// Rows renders expenses newest first, preceded by Header. Amounts are plain
// decimal strings so the spreadsheet can sum them.
func Rows(expenses []core.Expense) [][]any {
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	rows := make([][]any, 0, len(sorted)+1)
	rows = append(rows, Header)
	for _, e := range sorted {
		rows = append(rows, []any{
			e.CreatedAt.UTC().Format("2006-01-02"),
			e.Description,
			e.Note,
			e.Amount.Input(),
			e.ID,
		})
	}
	return rows
}
