package http

import (
	"context"
	"net/http"

	"outlay/internal/auth"
	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/store"
)

type dashboardPage struct {
	Title    string
	User     auth.Identity
	Expenses []core.Expense
	Summary  core.Summary
	Filters  filterValues
	Error    string
}

type formPage struct {
	Title  string
	User   auth.Identity
	Action string
	ID     string
	Form   core.ExpenseForm
}

func (s *Server) dashboard(sess *auth.Session, errMsg string) dashboardPage {
	state := sess.Store.State()
	return dashboardPage{
		Title:    "Dashboard",
		User:     sess.Identity,
		Expenses: core.VisibleExpenses(state.Expenses, state.Filters),
		Summary:  core.Summarize(state.Expenses, state.Filters),
		Filters:  filterValuesFromState(state.Filters),
		Error:    errMsg,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	s.render(w, r, http.StatusOK, "dashboard.html", s.dashboard(sess, ""))
}

// handleFilters applies the filter form and shows the dashboard again.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w, r)
		return
	}
	actions, err := filterValuesFromForm(r.PostForm).actions(s.now().Location())
	if err != nil {
		s.render(w, r, statusFor(err), "dashboard.html", s.dashboard(sess, publicMessage(err)))
		return
	}
	s.applyFilters(r.Context(), sess, actions)
	NewHTMXResponse().TriggerFiltersChanged().Redirect("/dashboard").Write(w, r)
}

// applyFilters dispatches the filter actions and logs the resulting state.
func (s *Server) applyFilters(ctx context.Context, sess *auth.Session, actions []store.Action) filterValues {
	for _, a := range actions {
		sess.Store.Dispatch(a)
	}
	v := filterValuesFromState(sess.Store.State().Filters)
	s.events.LogFiltersChanged(ctx, sess.Identity.UID, v.Text, v.SortBy, deref(v.StartDate), deref(v.EndDate))
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	s.render(w, r, http.StatusOK, "expense_form.html", formPage{
		Title:  "Add expense",
		User:   sess.Identity,
		Action: "/create",
		Form:   core.NewExpenseForm(nil, s.now()),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	ctx := r.Context()
	page := formPage{
		Title:  "Add expense",
		User:   sess.Identity,
		Action: "/create",
		Form:   core.NewExpenseForm(nil, s.now()),
	}
	if !s.submitForm(w, r, &page) {
		return
	}
	data, err := page.Form.Submit()
	if err != nil {
		s.render(w, r, statusFor(err), "expense_form.html", page)
		return
	}

	expense, err := s.actions(sess).StartAddExpense(ctx, data)
	if err != nil {
		s.formFailed(w, r, &page, err, log.OpCreate)
		return
	}

	s.appMetrics.expensesAdded.Add(1)
	s.events.LogExpenseChanged(ctx, log.OpCreate, sess.Identity.UID, expense.ID, expense.Description, expense.Amount.Cents)
	NewHTMXResponse().
		TriggerExpensesChanged(expense.ID).
		Redirect("/dashboard").
		Write(w, r)
}

// findExpense looks id up in the session's cached list.
func findExpense(sess *auth.Session, id string) (core.Expense, bool) {
	for _, e := range sess.Store.State().Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	id := r.PathValue("id")
	expense, ok := findExpense(sess, id)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "expense_form.html", formPage{
		Title:  "Edit expense",
		User:   sess.Identity,
		Action: "/edit/" + id,
		ID:     id,
		Form:   core.NewExpenseForm(&expense, s.now()),
	})
}

// handleEdit submits the form and sends only the fields that changed.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	ctx := r.Context()
	id := r.PathValue("id")
	expense, ok := findExpense(sess, id)
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	page := formPage{
		Title:  "Edit expense",
		User:   sess.Identity,
		Action: "/edit/" + id,
		ID:     id,
		Form:   core.NewExpenseForm(&expense, s.now()),
	}
	if !s.submitForm(w, r, &page) {
		return
	}
	data, err := page.Form.Submit()
	if err != nil {
		s.render(w, r, statusFor(err), "expense_form.html", page)
		return
	}

	updates := core.Diff(expense, data.WithID(id))
	if !updates.IsEmpty() {
		if err := s.actions(sess).StartEditExpense(ctx, id, updates); err != nil {
			s.formFailed(w, r, &page, err, log.OpUpdate)
			return
		}
		s.appMetrics.expensesEdited.Add(1)
		edited := expense.Apply(updates)
		s.events.LogExpenseChanged(ctx, log.OpUpdate, sess.Identity.UID, id, edited.Description, edited.Amount.Cents)
	}
	NewHTMXResponse().
		TriggerExpensesChanged(id).
		Redirect("/dashboard").
		Write(w, r)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.actions(sess).StartRemoveExpense(ctx, id); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentExpense).ErrorContext(ctx, "Failed to remove expense",
			log.FieldError, err, log.FieldExpenseID, id)
		ErrorResponse(statusFor(err), publicMessage(err)).Write(w, r)
		return
	}

	s.appMetrics.expensesRemoved.Add(1)
	s.events.LogExpenseChanged(ctx, log.OpDelete, sess.Identity.UID, id, "", 0)
	NewHTMXResponse().
		TriggerExpensesChanged(id).
		Redirect("/dashboard").
		Write(w, r)
}

// submitForm parses the posted form into page.Form. It writes the error
// response itself and returns false when the request is unusable.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request, page *formPage) bool {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w, r)
		return false
	}
	if err := applyExpenseForm(&page.Form, r.PostForm, s.now().Location()); err != nil {
		page.Form.Error = publicMessage(err)
		s.render(w, r, statusFor(err), "expense_form.html", page)
		return false
	}
	return true
}

func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, page *formPage, err error, op string) {
	ctx := r.Context()
	if statusFor(err) == http.StatusInternalServerError {
		s.events.LogError(ctx, "Failed to save expense", err, log.ComponentExpense, op,
			log.NewFields().WithUser(page.User.UID))
	}
	page.Form.Error = publicMessage(err)
	s.render(w, r, statusFor(err), "expense_form.html", page)
}
