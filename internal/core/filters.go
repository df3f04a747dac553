package core

import (
	"fmt"
	"time"
)

// SortBy selects the ordering of the visible expense list.
type SortBy string

const (
	SortByDate   SortBy = "date"
	SortByAmount SortBy = "amount"
)

func (s SortBy) IsValid() bool {
	return s == SortByDate || s == SortByAmount
}

// ParseSortBy maps user input to a SortBy.
func ParseSortBy(s string) (SortBy, error) {
	v := SortBy(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid sort key %q: must be %q or %q", s, SortByDate, SortByAmount)
	}
	return v, nil
}

// Filters is the transient view state controlling which expenses are shown
// and in which order. Nil bounds are open.
type Filters struct {
	Text      string
	SortBy    SortBy
	StartDate *time.Time
	EndDate   *time.Time
}

// DefaultFilters returns the filters a fresh session starts with: no text,
// newest first, restricted to the month containing now.
func DefaultFilters(now time.Time) Filters {
	start := StartOfMonth(now)
	end := EndOfMonth(now)
	return Filters{
		Text:      "",
		SortBy:    SortByDate,
		StartDate: &start,
		EndDate:   &end,
	}
}

// Clone deep-copies the date bounds.
func (f Filters) Clone() Filters {
	if f.StartDate != nil {
		t := *f.StartDate
		f.StartDate = &t
	}
	if f.EndDate != nil {
		t := *f.EndDate
		f.EndDate = &t
	}
	return f
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Millisecond)
}
