package core

import (
	"errors"
	"strings"
	"time"
)

// ErrFormIncomplete is returned when the form is submitted without a
// description or an amount.
var ErrFormIncomplete = errors.New("description and amount are required")

// FormIncompleteMessage is the message shown next to an incomplete form.
const FormIncompleteMessage = "Please provide description and amount."

// ExpenseForm holds the editable state of the add/edit expense form.
// Amount is kept as the raw text typed by the user.
type ExpenseForm struct {
	Description string
	Note        string
	Amount      string
	CreatedAt   time.Time
	Error       string
}

// NewExpenseForm returns a form prefilled from e, or an empty form dated now
// when e is nil.
func NewExpenseForm(e *Expense, now time.Time) ExpenseForm {
	if e == nil {
		return ExpenseForm{CreatedAt: now}
	}
	return ExpenseForm{
		Description: e.Description,
		Note:        e.Note,
		Amount:      e.Amount.Input(),
		CreatedAt:   e.CreatedAt,
	}
}

func (f *ExpenseForm) SetDescription(v string) { f.Description = v }

func (f *ExpenseForm) SetNote(v string) { f.Note = v }

// SetAmount accepts v only when it is valid amount input; otherwise the
// previous value is kept.
func (f *ExpenseForm) SetAmount(v string) {
	v = strings.TrimSpace(v)
	if IsAmountInput(v) {
		f.Amount = v
	}
}

// SetCreatedAt ignores the zero time so the date picker cannot be cleared.
func (f *ExpenseForm) SetCreatedAt(t time.Time) {
	if !t.IsZero() {
		f.CreatedAt = t
	}
}

// Submit validates the form and returns the payload. On failure the error
// message is also stored in f.Error.
func (f *ExpenseForm) Submit() (ExpenseData, error) {
	if strings.TrimSpace(f.Description) == "" || f.Amount == "" {
		f.Error = FormIncompleteMessage
		return ExpenseData{}, ErrFormIncomplete
	}
	cents, err := ParseAmount(f.Amount)
	if err != nil {
		f.Error = "Please provide a valid amount."
		return ExpenseData{}, err
	}
	data := ExpenseData{
		Description: strings.TrimSpace(f.Description),
		Note:        f.Note,
		Amount:      Money{Cents: cents},
		CreatedAt:   f.CreatedAt,
	}
	if err := data.Validate(); err != nil {
		f.Error = err.Error()
		return ExpenseData{}, err
	}
	f.Error = ""
	return data, nil
}
