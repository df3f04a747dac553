package database

import (
	"sort"
	"time"

	"outlay/internal/core"
)

// FromExpenseData converts the payload to its stored form.
func FromExpenseData(d core.ExpenseData) Document {
	d = d.WithDefaults()
	return Document{
		Description: d.Description,
		Note:        d.Note,
		Amount:      d.Amount.Cents,
		CreatedAt:   d.CreatedAt.UnixMilli(),
	}
}

// ToExpense converts a stored document back to an expense.
func ToExpense(key string, d Document) core.Expense {
	return core.Expense{
		ID:          key,
		Description: d.Description,
		Note:        d.Note,
		Amount:      core.Money{Cents: d.Amount},
		CreatedAt:   time.UnixMilli(d.CreatedAt).UTC(),
	}
}

// ToExpenses converts a collection to a list ordered by key.
func ToExpenses(docs map[string]Document) []core.Expense {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]core.Expense, 0, len(keys))
	for _, k := range keys {
		out = append(out, ToExpense(k, docs[k]))
	}
	return out
}

// PatchFromUpdates converts field-level updates to a Patch.
func PatchFromUpdates(u core.ExpenseUpdates) Patch {
	var p Patch
	p.Description = u.Description
	p.Note = u.Note
	if u.Amount != nil {
		v := u.Amount.Cents
		p.Amount = &v
	}
	if u.CreatedAt != nil {
		v := u.CreatedAt.UnixMilli()
		p.CreatedAt = &v
	}
	return p
}
