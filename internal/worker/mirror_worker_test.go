package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/database"
	"outlay/internal/database/memory"
	sheetsmem "outlay/internal/sheets/memory"
	"outlay/internal/testutil"
)

type failingMirror struct{}

func (failingMirror) WriteSnapshot(context.Context, string, []core.Expense) error {
	return errors.New("quota exceeded")
}

func seededDB(t *testing.T, uid string) *memory.Store {
	t.Helper()
	db := memory.New(nil)
	docs := make(map[string]database.Document)
	for _, e := range testutil.Expenses() {
		docs[e.ID] = database.FromExpenseData(e.Data())
	}
	require.NoError(t, db.ReplaceAll(context.Background(), database.ExpensesPath(uid), docs))
	return db
}

func TestMirrorWorker_HandleChangeMessage(t *testing.T) {
	mirror := sheetsmem.New()
	w := NewMirrorWorker(seededDB(t, "u1"), mirror, "outlay.mirror")

	err := w.HandleChangeMessage(context.Background(), amqp.NewChangeMessage(database.ExpensesPath("u1"), "a"))
	require.NoError(t, err)

	rows, ok := mirror.Tab("u1")
	require.True(t, ok)
	assert.Len(t, rows, 4)
}

func TestMirrorWorker_DropsForeignPaths(t *testing.T) {
	mirror := sheetsmem.New()
	w := NewMirrorWorker(memory.New(nil), mirror, "q")

	err := w.HandleChangeMessage(context.Background(), amqp.NewChangeMessage("settings/theme", "a"))
	require.NoError(t, err)
	assert.Zero(t, mirror.Writes())
}

func TestMirrorWorker_MirrorFailureIsReturned(t *testing.T) {
	w := NewMirrorWorker(seededDB(t, "u1"), failingMirror{}, "q")
	err := w.Sync(context.Background(), "u1")
	assert.ErrorContains(t, err, "quota exceeded")
}

type stubConsumer struct {
	spec amqp.QueueSpec
	msgs []*amqp.ChangeMessage
	errs []error
}

func (s *stubConsumer) Consume(ctx context.Context, spec amqp.QueueSpec, handler func(context.Context, *amqp.ChangeMessage) error) error {
	s.spec = spec
	for _, m := range s.msgs {
		s.errs = append(s.errs, handler(ctx, m))
	}
	return context.Canceled
}

func TestMirrorWorker_Run(t *testing.T) {
	mirror := sheetsmem.New()
	w := NewMirrorWorker(seededDB(t, "u1"), mirror, "outlay.mirror")
	c := &stubConsumer{msgs: []*amqp.ChangeMessage{
		amqp.NewChangeMessage(database.ExpensesPath("u1"), "a"),
		amqp.NewChangeMessage(database.ExpensesPath("u2"), "b"),
	}}

	require.NoError(t, w.Run(context.Background(), c))
	assert.Equal(t, amqp.QueueSpec{Name: "outlay.mirror", Durable: true}, c.spec)
	assert.Equal(t, []error{nil, nil}, c.errs)
	assert.Equal(t, 2, mirror.Writes())

	rows, _ := mirror.Tab("u2")
	assert.Len(t, rows, 1)
}
