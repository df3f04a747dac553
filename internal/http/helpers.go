package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"outlay/internal/auth"
	"outlay/internal/core"
	"outlay/internal/database"
)

// dayLayout is the format of date inputs and date fields in the API.
const dayLayout = "2006-01-02"

// errBadRequest marks malformed input that is not a validation failure.
var errBadRequest = errors.New("bad request")

// statusFor maps an operation error to the response status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, database.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFormIncomplete),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrDescriptionLong),
		errors.Is(err, core.ErrInvalidCreatedAt),
		errors.Is(err, core.ErrEmptyID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidState), errors.Is(err, auth.ErrNoIdentity):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to show to the user.
func publicMessage(err error) string {
	switch statusFor(err) {
	case http.StatusNotFound:
		return "Expense not found."
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return err.Error()
	case http.StatusUnauthorized:
		return "Sign-in failed, please try again."
	default:
		return "Something went wrong, please try again."
	}
}

// sanitizeInput removes control characters except tab and newlines, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dayLayout)
}

// templateFuncs renders times in loc, the zone date inputs are parsed in.
func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"money": func(m core.Money) string { return m.String() },
		"date":  func(t time.Time) string { return displayDate(t.In(loc)) },
		"day":   func(t time.Time) string { return t.In(loc).Format(dayLayout) },
	}
}

// displayDate renders t as "January 1st, 1970".
func displayDate(t time.Time) string {
	d := t.Day()
	suffix := "th"
	if d < 11 || d > 13 {
		switch d % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%s %d%s, %d", t.Month(), d, suffix, t.Year())
}
