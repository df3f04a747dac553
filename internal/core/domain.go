package core

import (
	"errors"
	"strings"
	"time"
)

const maxDescriptionLength = 200

type (
	Money struct {
		Cents int64
	}

	// Expense is a single financial record. ID is assigned by the database
	// when the expense is first pushed and never changes afterwards.
	Expense struct {
		ID          string
		Description string
		Note        string
		Amount      Money
		CreatedAt   time.Time
	}

	// ExpenseData is the payload of an expense before the database has
	// assigned it a key.
	ExpenseData struct {
		Description string
		Note        string
		Amount      Money
		CreatedAt   time.Time
	}

	// ExpenseUpdates is a field-level patch; nil fields are left untouched.
	ExpenseUpdates struct {
		Description *string
		Note        *string
		Amount      *Money
		CreatedAt   *time.Time
	}
)

var (
	ErrEmptyID          = errors.New("empty expense id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidCreatedAt = errors.New("invalid creation date")
)

// Epoch is the creation time given to expenses that were created without one.
var Epoch = time.UnixMilli(0).UTC()

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// WithDefaults fills the zero creation time with Epoch, mirroring the
// defaults applied when an expense is added without data.
func (d ExpenseData) WithDefaults() ExpenseData {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = Epoch
	}
	return d
}

func (d ExpenseData) Validate() error {
	if len(d.Description) > maxDescriptionLength {
		return ErrDescriptionLong
	}
	return d.Amount.Validate()
}

// WithID turns the payload into an Expense stored under id.
func (d ExpenseData) WithID(id string) Expense {
	d = d.WithDefaults()
	return Expense{
		ID:          id,
		Description: d.Description,
		Note:        d.Note,
		Amount:      d.Amount,
		CreatedAt:   d.CreatedAt,
	}
}

// Data strips the ID.
func (e Expense) Data() ExpenseData {
	return ExpenseData{
		Description: e.Description,
		Note:        e.Note,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	return e.Data().Validate()
}

// Apply returns a copy of e with the set fields of u applied.
func (e Expense) Apply(u ExpenseUpdates) Expense {
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Note != nil {
		e.Note = *u.Note
	}
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.CreatedAt != nil {
		e.CreatedAt = *u.CreatedAt
	}
	return e
}

// IsEmpty reports whether no field is set.
func (u ExpenseUpdates) IsEmpty() bool {
	return u.Description == nil && u.Note == nil && u.Amount == nil && u.CreatedAt == nil
}

func (u ExpenseUpdates) Validate() error {
	if u.Description != nil && len(*u.Description) > maxDescriptionLength {
		return ErrDescriptionLong
	}
	if u.Amount != nil {
		if err := u.Amount.Validate(); err != nil {
			return err
		}
	}
	if u.CreatedAt != nil && u.CreatedAt.IsZero() {
		return ErrInvalidCreatedAt
	}
	return nil
}

// Diff returns the updates that turn before into after.
func Diff(before, after Expense) ExpenseUpdates {
	var u ExpenseUpdates
	if before.Description != after.Description {
		u.Description = &after.Description
	}
	if before.Note != after.Note {
		u.Note = &after.Note
	}
	if before.Amount != after.Amount {
		u.Amount = &after.Amount
	}
	if !before.CreatedAt.Equal(after.CreatedAt) {
		u.CreatedAt = &after.CreatedAt
	}
	return u
}
