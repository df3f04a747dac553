// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"time"

	"outlay/internal/core"
)

// Day is 24 hours, used to place fixtures around the epoch.
const Day = 24 * time.Hour

// Expenses returns three expenses: one at the epoch, one four days before it
// and one four days after it. A fresh slice is returned on every call.
func Expenses() []core.Expense {
	return []core.Expense{
		{
			ID:          "1",
			Description: "Gum",
			Note:        "",
			Amount:      core.Money{Cents: 195},
			CreatedAt:   core.Epoch,
		},
		{
			ID:          "2",
			Description: "Rent",
			Note:        "",
			Amount:      core.Money{Cents: 109500},
			CreatedAt:   core.Epoch.Add(-4 * Day),
		},
		{
			ID:          "3",
			Description: "Credit Card",
			Note:        "",
			Amount:      core.Money{Cents: 4500},
			CreatedAt:   core.Epoch.Add(4 * Day),
		},
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
