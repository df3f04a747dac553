package http

import (
	"net/http"

	"outlay/internal/auth"
	"outlay/internal/core"
	"outlay/internal/database"
	"outlay/internal/log"
)

type expenseJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Note        string `json:"note"`
	Amount      int64  `json:"amount"`
	CreatedAt   int64  `json:"createdAt"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Note:        e.Note,
		Amount:      e.Amount.Cents,
		CreatedAt:   e.CreatedAt.UnixMilli(),
	}
}

type summaryJSON struct {
	Count     int    `json:"count"`
	Total     int64  `json:"total"`
	TotalText string `json:"totalText"`
	Hidden    int    `json:"hidden"`
	Headline  string `json:"headline"`
}

type expenseListJSON struct {
	Expenses []expenseJSON `json:"expenses"`
	Summary  summaryJSON   `json:"summary"`
}

// handleAPIListExpenses returns the visible expenses and their summary.
func (s *Server) handleAPIListExpenses(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	state := sess.Store.State()
	visible := core.VisibleExpenses(state.Expenses, state.Filters)
	summary := core.Summarize(state.Expenses, state.Filters)

	out := expenseListJSON{
		Expenses: make([]expenseJSON, 0, len(visible)),
		Summary: summaryJSON{
			Count:     summary.Count,
			Total:     summary.Total.Cents,
			TotalText: summary.Total.String(),
			Hidden:    summary.Hidden,
			Headline:  summary.Headline(),
		},
	}
	for _, e := range visible {
		out.Expenses = append(out.Expenses, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPICreateExpense(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	ctx := r.Context()
	var in expenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSONError(w, err)
		return
	}

	expense, err := s.actions(sess).StartAddExpense(ctx, in.data())
	if err != nil {
		s.apiFailed(w, r, err, log.OpCreate, "")
		return
	}

	s.appMetrics.expensesAdded.Add(1)
	s.events.LogExpenseChanged(ctx, log.OpCreate, sess.Identity.UID, expense.ID, expense.Description, expense.Amount.Cents)
	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

// handleAPIEditExpense applies the fields present in the body.
func (s *Server) handleAPIEditExpense(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	ctx := r.Context()
	id := r.PathValue("id")
	var in expenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSONError(w, err)
		return
	}

	updates := in.updates()
	if !updates.IsEmpty() {
		if err := s.actions(sess).StartEditExpense(ctx, id, updates); err != nil {
			s.apiFailed(w, r, err, log.OpUpdate, id)
			return
		}
		s.appMetrics.expensesEdited.Add(1)
	}

	expense, ok := findExpense(sess, id)
	switch {
	case !ok && updates.IsEmpty():
		writeJSONError(w, database.ErrNotFound)
		return
	case !ok:
		// Stored, but the watcher already dropped it from the cache.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !updates.IsEmpty() {
		s.events.LogExpenseChanged(ctx, log.OpUpdate, sess.Identity.UID, id, expense.Description, expense.Amount.Cents)
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleAPIRemoveExpense(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.actions(sess).StartRemoveExpense(ctx, id); err != nil {
		s.apiFailed(w, r, err, log.OpDelete, id)
		return
	}
	s.appMetrics.expensesRemoved.Add(1)
	s.events.LogExpenseChanged(ctx, log.OpDelete, sess.Identity.UID, id, "", 0)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIGetFilters(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	writeJSON(w, http.StatusOK, filterValuesFromState(sess.Store.State().Filters))
}

// handleAPIPutFilters replaces the whole filter state. Omitted dates clear
// their bound.
func (s *Server) handleAPIPutFilters(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	var in filterValues
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSONError(w, err)
		return
	}
	actions, err := in.actions(s.now().Location())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.applyFilters(r.Context(), sess, actions))
}

func (s *Server) apiFailed(w http.ResponseWriter, r *http.Request, err error, op, id string) {
	if statusFor(err) == http.StatusInternalServerError {
		fields := log.NewFields()
		if id != "" {
			fields[log.FieldExpenseID] = id
		}
		s.events.LogError(r.Context(), "Expense API request failed", err, log.ComponentExpense, op, fields)
	}
	writeJSONError(w, err)
}
