// Package services holds the operations that change durable data: each one
// writes to the database first and only then dispatches the matching action.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/core"
	"outlay/internal/database"
	"outlay/internal/store"
)

// ExpenseActions runs the start operations for one signed-in user.
type ExpenseActions struct {
	db       database.Database
	dispatch store.Dispatcher
	uid      string
}

func NewExpenseActions(db database.Database, dispatch store.Dispatcher, uid string) *ExpenseActions {
	return &ExpenseActions{db: db, dispatch: dispatch, uid: uid}
}

func (a *ExpenseActions) path() string {
	return database.ExpensesPath(a.uid)
}

// StartAddExpense stores data under a new key and dispatches ADD_EXPENSE.
func (a *ExpenseActions) StartAddExpense(ctx context.Context, data core.ExpenseData) (core.Expense, error) {
	data = data.WithDefaults()
	if err := data.Validate(); err != nil {
		return core.Expense{}, err
	}

	doc := database.FromExpenseData(data)
	key, err := a.db.Push(ctx, a.path(), doc)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	// Read back from the stored form so the store matches what the watcher
	// delivers for the same document.
	expense := database.ToExpense(key, doc)
	a.dispatch.Dispatch(store.AddExpense(expense))
	slog.DebugContext(ctx, "Expense added", "uid", a.uid, "id", key, "amount_cents", expense.Amount.Cents)
	return expense, nil
}

// StartRemoveExpense deletes id and dispatches REMOVE_EXPENSE.
func (a *ExpenseActions) StartRemoveExpense(ctx context.Context, id string) error {
	if err := a.db.Remove(ctx, a.path(), id); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}
	a.dispatch.Dispatch(store.RemoveExpense(id))
	slog.DebugContext(ctx, "Expense removed", "uid", a.uid, "id", id)
	return nil
}

// StartEditExpense merges updates into id and dispatches EDIT_EXPENSE.
func (a *ExpenseActions) StartEditExpense(ctx context.Context, id string, updates core.ExpenseUpdates) error {
	if err := updates.Validate(); err != nil {
		return err
	}
	if err := a.db.Update(ctx, a.path(), id, database.PatchFromUpdates(updates)); err != nil {
		return fmt.Errorf("edit expense: %w", err)
	}
	a.dispatch.Dispatch(store.EditExpense(id, updates))
	slog.DebugContext(ctx, "Expense edited", "uid", a.uid, "id", id)
	return nil
}

// StartSetExpenses loads the whole collection and dispatches SET_EXPENSES.
func (a *ExpenseActions) StartSetExpenses(ctx context.Context) ([]core.Expense, error) {
	docs, err := a.db.List(ctx, a.path())
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	expenses := database.ToExpenses(docs)
	a.dispatch.Dispatch(store.SetExpenses(expenses))
	return expenses, nil
}

// StartWatch dispatches SET_EXPENSES for every snapshot of the collection
// until ctx is done. It returns once the subscription is established and
// keeps consuming in the background.
func (a *ExpenseActions) StartWatch(ctx context.Context) error {
	snaps, err := a.db.Watch(ctx, a.path())
	if err != nil {
		return fmt.Errorf("watch expenses: %w", err)
	}
	go func() {
		for snap := range snaps {
			a.dispatch.Dispatch(store.SetExpenses(database.ToExpenses(snap.Docs)))
		}
		slog.DebugContext(ctx, "Expense watcher stopped", "uid", a.uid)
	}()
	return nil
}
