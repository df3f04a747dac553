package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlay/internal/core"
	"outlay/internal/testutil"
)

func ids(expenses []core.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

func TestVisibleExpenses_TextFilter(t *testing.T) {
	f := core.Filters{Text: "e", SortBy: core.SortByDate}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"3", "2"}, ids(got))
}

func TestVisibleExpenses_TextFilterIsCaseInsensitive(t *testing.T) {
	f := core.Filters{Text: "CREDIT", SortBy: core.SortByDate}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestVisibleExpenses_StartDate(t *testing.T) {
	start := core.Epoch
	f := core.Filters{SortBy: core.SortByDate, StartDate: &start}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"3", "1"}, ids(got))
}

func TestVisibleExpenses_EndDate(t *testing.T) {
	end := core.Epoch.Add(2 * testutil.Day)
	f := core.Filters{SortBy: core.SortByDate, EndDate: &end}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestVisibleExpenses_BoundsAreInclusiveByDay(t *testing.T) {
	// Bounds late and early in the same day as the epoch expense.
	start := core.Epoch.Add(23 * time.Hour)
	end := core.Epoch.Add(-time.Hour).Add(testutil.Day)
	f := core.Filters{SortBy: core.SortByDate, StartDate: &start, EndDate: &end}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestVisibleExpenses_BoundsUseTheirOwnZone(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	// 23:00 EDT on March 10th is already March 11th in UTC.
	late := core.Expense{ID: "late", CreatedAt: time.Date(2024, 3, 10, 23, 0, 0, 0, edt).UTC()}
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, edt)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, edt)
	f := core.Filters{SortBy: core.SortByDate, StartDate: &start, EndDate: &end}
	assert.Equal(t, []string{"late"}, ids(core.VisibleExpenses([]core.Expense{late}, f)))

	next := start.AddDate(0, 0, 1)
	f.StartDate = &next
	f.EndDate = nil
	assert.Empty(t, core.VisibleExpenses([]core.Expense{late}, f))
}

func TestVisibleExpenses_SortByAmount(t *testing.T) {
	f := core.Filters{SortBy: core.SortByAmount}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"2", "3", "1"}, ids(got))
}

func TestVisibleExpenses_SortByDate(t *testing.T) {
	f := core.Filters{SortBy: core.SortByDate}
	got := core.VisibleExpenses(testutil.Expenses(), f)
	assert.Equal(t, []string{"3", "1", "2"}, ids(got))
}

func TestVisibleExpenses_DoesNotMutateInput(t *testing.T) {
	in := testutil.Expenses()
	_ = core.VisibleExpenses(in, core.Filters{SortBy: core.SortByAmount})
	assert.Equal(t, []string{"1", "2", "3"}, ids(in))
}

func TestVisibleExpenses_StableOnTies(t *testing.T) {
	in := []core.Expense{
		{ID: "a", Amount: core.Money{Cents: 100}},
		{ID: "b", Amount: core.Money{Cents: 100}},
		{ID: "c", Amount: core.Money{Cents: 100}},
	}
	got := core.VisibleExpenses(in, core.Filters{SortBy: core.SortByAmount})
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestExpensesTotal(t *testing.T) {
	assert.Equal(t, int64(0), core.ExpensesTotal(nil).Cents)

	one := testutil.Expenses()[:1]
	assert.Equal(t, int64(195), core.ExpensesTotal(one).Cents)

	assert.Equal(t, int64(195+109500+4500), core.ExpensesTotal(testutil.Expenses()).Cents)
}

func TestSummarize(t *testing.T) {
	start := core.Epoch
	f := core.Filters{SortBy: core.SortByDate, StartDate: &start}
	s := core.Summarize(testutil.Expenses(), f)

	require.Equal(t, 2, s.Count)
	assert.Equal(t, int64(4695), s.Total.Cents)
	assert.Equal(t, 1, s.Hidden)
	assert.Equal(t, "Viewing 2 expenses totalling $46.95", s.Headline())

	single := core.Summary{Count: 1, Total: core.Money{Cents: 195}}
	assert.Equal(t, "Viewing 1 expense totalling $1.95", single.Headline())
}

func TestDefaultFilters(t *testing.T) {
	now := time.Date(2026, time.February, 14, 10, 30, 0, 0, time.UTC)
	f := core.DefaultFilters(now)

	assert.Equal(t, "", f.Text)
	assert.Equal(t, core.SortByDate, f.SortBy)
	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, time.Date(2026, time.February, 28, 23, 59, 59, int(999*time.Millisecond), time.UTC), *f.EndDate)
}

func TestParseSortBy(t *testing.T) {
	got, err := core.ParseSortBy("amount")
	require.NoError(t, err)
	assert.Equal(t, core.SortByAmount, got)

	_, err = core.ParseSortBy("name")
	assert.Error(t, err)
}
