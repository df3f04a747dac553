package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlay/internal/database"
	"outlay/internal/database/memory"
	"outlay/internal/database/realtime"
)

var path = database.ExpensesPath("u1")

func TestStore_PushGetList(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)

	key, err := s.Push(ctx, path, database.Document{Description: "Gum", Amount: 195})
	require.NoError(t, err)
	require.NotEmpty(t, key)

	doc, err := s.Get(ctx, path, key)
	require.NoError(t, err)
	assert.Equal(t, "Gum", doc.Description)

	all, err := s.List(ctx, path)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	other, err := s.List(ctx, database.ExpensesPath("u2"))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_UpdateRemove(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	require.NoError(t, s.Set(ctx, path, "k1", database.Document{Description: "Rent", Amount: 109500}))

	note := "january"
	require.NoError(t, s.Update(ctx, path, "k1", database.Patch{Note: &note}))
	doc, err := s.Get(ctx, path, "k1")
	require.NoError(t, err)
	assert.Equal(t, database.Document{Description: "Rent", Note: "january", Amount: 109500}, doc)

	err = s.Update(ctx, path, "missing", database.Patch{Note: &note})
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, s.Remove(ctx, path, "k1"))
	require.NoError(t, s.Remove(ctx, path, "k1"))
	_, err = s.Get(ctx, path, "k1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	require.NoError(t, s.Set(ctx, path, "old", database.Document{Description: "old"}))

	require.NoError(t, s.ReplaceAll(ctx, path, map[string]database.Document{
		"a": {Description: "a"},
		"b": {Description: "b"},
	}))
	all, err := s.List(ctx, path)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotContains(t, all, "old")

	err = s.ReplaceAll(ctx, path, map[string]database.Document{"bad/key": {}})
	assert.ErrorIs(t, err, database.ErrInvalidKey)
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	_, err := s.Push(ctx, "", database.Document{})
	assert.ErrorIs(t, err, database.ErrInvalidPath)
	err = s.Set(ctx, path, "a.b", database.Document{})
	assert.ErrorIs(t, err, database.ErrInvalidKey)
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub()
	s := memory.New(hub).WithKeyFunc(func() string { return "fixed" })

	snaps, err := s.Watch(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, (<-snaps).Docs)

	_, err = s.Push(ctx, path, database.Document{Description: "Coffee", Amount: 350})
	require.NoError(t, err)

	select {
	case snap := <-snaps:
		assert.Equal(t, "Coffee", snap.Docs["fixed"].Description)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}
