// Package store is the per-session state container. Handlers never mutate
// state directly: they build plain Action values with the creators in this
// file and dispatch them, and the reducers compute the next State.
package store

import (
	"time"

	"outlay/internal/core"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionAddExpense    ActionType = "ADD_EXPENSE"
	ActionRemoveExpense ActionType = "REMOVE_EXPENSE"
	ActionEditExpense   ActionType = "EDIT_EXPENSE"
	ActionSetExpenses   ActionType = "SET_EXPENSES"
	ActionSetTextFilter ActionType = "SET_TEXT_FILTER"
	ActionSortByDate    ActionType = "SORT_BY_DATE"
	ActionSortByAmount  ActionType = "SORT_BY_AMOUNT"
	ActionSetStartDate  ActionType = "SET_START_DATE"
	ActionSetEndDate    ActionType = "SET_END_DATE"
	ActionLogin         ActionType = "LOGIN"
	ActionLogout        ActionType = "LOGOUT"
)

// Action is a plain description of a state change. Only the fields relevant
// to Type are set.
type Action struct {
	Type      ActionType
	Expense   *core.Expense
	Expenses  []core.Expense
	ID        string
	Updates   core.ExpenseUpdates
	Text      string
	StartDate *time.Time
	EndDate   *time.Time
	UID       string
}

func AddExpense(e core.Expense) Action {
	return Action{Type: ActionAddExpense, Expense: &e}
}

func RemoveExpense(id string) Action {
	return Action{Type: ActionRemoveExpense, ID: id}
}

func EditExpense(id string, updates core.ExpenseUpdates) Action {
	return Action{Type: ActionEditExpense, ID: id, Updates: updates}
}

// SetExpenses replaces the whole cached list.
func SetExpenses(expenses []core.Expense) Action {
	list := make([]core.Expense, len(expenses))
	copy(list, expenses)
	return Action{Type: ActionSetExpenses, Expenses: list}
}

// SetTextFilter sets the description filter; call with no argument to clear it.
func SetTextFilter(text ...string) Action {
	a := Action{Type: ActionSetTextFilter}
	if len(text) > 0 {
		a.Text = text[0]
	}
	return a
}

func SortByDate() Action {
	return Action{Type: ActionSortByDate}
}

func SortByAmount() Action {
	return Action{Type: ActionSortByAmount}
}

// SetStartDate sets the lower bound; nil clears it.
func SetStartDate(t *time.Time) Action {
	return Action{Type: ActionSetStartDate, StartDate: copyTime(t)}
}

// SetEndDate sets the upper bound; nil clears it.
func SetEndDate(t *time.Time) Action {
	return Action{Type: ActionSetEndDate, EndDate: copyTime(t)}
}

func Login(uid string) Action {
	return Action{Type: ActionLogin, UID: uid}
}

func Logout() Action {
	return Action{Type: ActionLogout}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
