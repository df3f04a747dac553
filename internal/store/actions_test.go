package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"outlay/internal/core"
	"outlay/internal/store"
	"outlay/internal/testutil"
)

func TestRemoveExpenseAction(t *testing.T) {
	assert.Equal(t, store.Action{Type: store.ActionRemoveExpense, ID: "123abc"}, store.RemoveExpense("123abc"))
}

func TestEditExpenseAction(t *testing.T) {
	updates := core.ExpenseUpdates{Note: testutil.Ptr("New note")}
	assert.Equal(t, store.Action{
		Type:    store.ActionEditExpense,
		ID:      "123abc",
		Updates: updates,
	}, store.EditExpense("123abc", updates))
}

func TestAddExpenseAction(t *testing.T) {
	e := testutil.Expenses()[1]
	a := store.AddExpense(e)
	assert.Equal(t, store.ActionAddExpense, a.Type)
	assert.Equal(t, &e, a.Expense)
}

func TestSetExpensesAction(t *testing.T) {
	expenses := testutil.Expenses()
	a := store.SetExpenses(expenses)
	assert.Equal(t, store.Action{Type: store.ActionSetExpenses, Expenses: expenses}, a)

	expenses[0].Description = "changed"
	assert.Equal(t, "Gum", a.Expenses[0].Description, "action must own its list")
}

func TestFilterActions(t *testing.T) {
	start := core.Epoch
	assert.Equal(t, store.Action{Type: store.ActionSetStartDate, StartDate: &start}, store.SetStartDate(&start))
	assert.Equal(t, store.Action{Type: store.ActionSetEndDate, EndDate: &start}, store.SetEndDate(&start))
	assert.Equal(t, store.Action{Type: store.ActionSetStartDate}, store.SetStartDate(nil))

	assert.Equal(t, store.Action{Type: store.ActionSortByAmount}, store.SortByAmount())
	assert.Equal(t, store.Action{Type: store.ActionSortByDate}, store.SortByDate())

	assert.Equal(t, store.Action{Type: store.ActionSetTextFilter, Text: "abc"}, store.SetTextFilter("abc"))
	assert.Equal(t, store.Action{Type: store.ActionSetTextFilter, Text: ""}, store.SetTextFilter())
}

func TestAuthActions(t *testing.T) {
	assert.Equal(t, store.Action{Type: store.ActionLogin, UID: "abc123"}, store.Login("abc123"))
	assert.Equal(t, store.Action{Type: store.ActionLogout}, store.Logout())
}
