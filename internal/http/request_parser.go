// Package http serves the outlay web app and its JSON API.
//
// This file implements utilities for parsing and validating request data:
// date inputs, the expense form, filter parameters and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outlay/internal/core"
	"outlay/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// parseDay parses a YYYY-MM-DD value as the start of that day in loc
// (time.Local when nil). An empty value yields nil.
func parseDay(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", errBadRequest, s)
	}
	return &t, nil
}

// endOfDay returns the last millisecond of t's day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// pickCreatedAt turns a date input into a creation time. Picking the day
// current already falls on keeps current; any other day is taken at noon.
func pickCreatedAt(value string, current time.Time, loc *time.Location) (time.Time, error) {
	day, err := parseDay(value, loc)
	if err != nil || day == nil {
		return current, err
	}
	cy, cm, cd := current.In(day.Location()).Date()
	dy, dm, dd := day.Date()
	if cy == dy && cm == dm && cd == dd {
		return current, nil
	}
	return day.Add(12 * time.Hour), nil
}

// applyExpenseForm copies the posted fields into form through its setters,
// so rejected amount input leaves the previous amount in place.
func applyExpenseForm(form *core.ExpenseForm, values url.Values, loc *time.Location) error {
	form.SetDescription(sanitizeInput(values.Get("description")))
	form.SetNote(strings.TrimSpace(values.Get("note")))
	form.SetAmount(values.Get("amount"))
	createdAt, err := pickCreatedAt(values.Get("createdAt"), form.CreatedAt, loc)
	if err != nil {
		return err
	}
	form.SetCreatedAt(createdAt)
	return nil
}

// filterValues is the filter state as carried by forms and the JSON API.
type filterValues struct {
	Text      string  `json:"text"`
	SortBy    string  `json:"sortBy"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

func filterValuesFromForm(values url.Values) filterValues {
	start := values.Get("startDate")
	end := values.Get("endDate")
	return filterValues{
		Text:      sanitizeInput(values.Get("text")),
		SortBy:    strings.TrimSpace(values.Get("sortBy")),
		StartDate: &start,
		EndDate:   &end,
	}
}

func filterValuesFromState(f core.Filters) filterValues {
	v := filterValues{Text: f.Text, SortBy: string(f.SortBy)}
	if f.StartDate != nil {
		s := formatDay(f.StartDate)
		v.StartDate = &s
	}
	if f.EndDate != nil {
		s := formatDay(f.EndDate)
		v.EndDate = &s
	}
	return v
}

// actions validates v and returns the filter actions that apply it. Date
// bounds cover whole days: the end date runs to the end of its day.
func (v filterValues) actions(loc *time.Location) ([]store.Action, error) {
	sortBy, err := core.ParseSortBy(v.SortBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	var start, end *time.Time
	if v.StartDate != nil {
		if start, err = parseDay(*v.StartDate, loc); err != nil {
			return nil, err
		}
	}
	if v.EndDate != nil {
		if end, err = parseDay(*v.EndDate, loc); err != nil {
			return nil, err
		}
		if end != nil {
			e := endOfDay(*end)
			end = &e
		}
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end date is before start date", errBadRequest)
	}

	sortAction := store.SortByDate()
	if sortBy == core.SortByAmount {
		sortAction = store.SortByAmount()
	}
	return []store.Action{
		store.SetTextFilter(v.Text),
		sortAction,
		store.SetStartDate(start),
		store.SetEndDate(end),
	}, nil
}

// decodeJSON reads a single JSON object from r into v. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// expenseInput is the JSON body of POST and PATCH /api/expenses. Amount is
// in cents and createdAt in epoch milliseconds, as stored.
type expenseInput struct {
	Description *string `json:"description"`
	Note        *string `json:"note"`
	Amount      *int64  `json:"amount"`
	CreatedAt   *int64  `json:"createdAt"`
}

// data builds a new expense payload; missing fields take their defaults.
func (in expenseInput) data() core.ExpenseData {
	var d core.ExpenseData
	if in.Description != nil {
		d.Description = sanitizeInput(*in.Description)
	}
	if in.Note != nil {
		d.Note = *in.Note
	}
	if in.Amount != nil {
		d.Amount = core.Money{Cents: *in.Amount}
	}
	if in.CreatedAt != nil {
		d.CreatedAt = time.UnixMilli(*in.CreatedAt)
	}
	return d
}

func (in expenseInput) updates() core.ExpenseUpdates {
	var u core.ExpenseUpdates
	if in.Description != nil {
		desc := sanitizeInput(*in.Description)
		u.Description = &desc
	}
	u.Note = in.Note
	if in.Amount != nil {
		u.Amount = &core.Money{Cents: *in.Amount}
	}
	if in.CreatedAt != nil {
		t := time.UnixMilli(*in.CreatedAt)
		u.CreatedAt = &t
	}
	return u
}
