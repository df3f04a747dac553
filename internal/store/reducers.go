package store

import (
	"outlay/internal/core"
)

// AuthState identifies the logged-in user. UID is empty when logged out.
type AuthState struct {
	UID string
}

// State is everything a session renders from.
type State struct {
	Expenses []core.Expense
	Filters  core.Filters
	Auth     AuthState
}

// Clone deep-copies s so callers can read it without holding the store lock.
func (s State) Clone() State {
	out := s
	if s.Expenses != nil {
		out.Expenses = make([]core.Expense, len(s.Expenses))
		copy(out.Expenses, s.Expenses)
	}
	out.Filters = s.Filters.Clone()
	return out
}

// Reducer computes the next state. Reducers never modify their input.
type Reducer func(State, Action) State

// ExpensesReducer handles the expense list actions.
func ExpensesReducer(state []core.Expense, a Action) []core.Expense {
	switch a.Type {
	case ActionAddExpense:
		if a.Expense == nil {
			return state
		}
		// The watcher may have delivered the new expense already; ids stay
		// unique, so an existing entry is replaced in place.
		out := make([]core.Expense, 0, len(state)+1)
		replaced := false
		for _, e := range state {
			if e.ID == a.Expense.ID {
				e = *a.Expense
				replaced = true
			}
			out = append(out, e)
		}
		if !replaced {
			out = append(out, *a.Expense)
		}
		return out
	case ActionRemoveExpense:
		out := make([]core.Expense, 0, len(state))
		for _, e := range state {
			if e.ID != a.ID {
				out = append(out, e)
			}
		}
		return out
	case ActionEditExpense:
		out := make([]core.Expense, len(state))
		for i, e := range state {
			if e.ID == a.ID {
				e = e.Apply(a.Updates)
			}
			out[i] = e
		}
		return out
	case ActionSetExpenses:
		out := make([]core.Expense, len(a.Expenses))
		copy(out, a.Expenses)
		return out
	default:
		return state
	}
}

// FiltersReducer handles the filter actions.
func FiltersReducer(state core.Filters, a Action) core.Filters {
	switch a.Type {
	case ActionSetTextFilter:
		state.Text = a.Text
	case ActionSortByDate:
		state.SortBy = core.SortByDate
	case ActionSortByAmount:
		state.SortBy = core.SortByAmount
	case ActionSetStartDate:
		state.StartDate = copyTime(a.StartDate)
	case ActionSetEndDate:
		state.EndDate = copyTime(a.EndDate)
	}
	return state
}

// AuthReducer handles login and logout.
func AuthReducer(state AuthState, a Action) AuthState {
	switch a.Type {
	case ActionLogin:
		return AuthState{UID: a.UID}
	case ActionLogout:
		return AuthState{}
	default:
		return state
	}
}

// RootReducer combines the slice reducers. Logging out also drops the
// cached expenses so nothing leaks into the next session.
func RootReducer(s State, a Action) State {
	next := State{
		Expenses: ExpensesReducer(s.Expenses, a),
		Filters:  FiltersReducer(s.Filters, a),
		Auth:     AuthReducer(s.Auth, a),
	}
	if a.Type == ActionLogout {
		next.Expenses = nil
	}
	return next
}
