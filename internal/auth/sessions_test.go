package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlay/internal/store"
)

func TestDev(t *testing.T) {
	d := NewDev("local")
	u, err := url.Parse(d.AuthCodeURL("abc"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", u.Path)
	assert.Equal(t, "abc", u.Query().Get("state"))

	id, err := d.Exchange(context.Background(), u.Query().Get("code"))
	require.NoError(t, err)
	assert.Equal(t, "local", id.UID)

	_, err = d.Exchange(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestSessions_State(t *testing.T) {
	s := NewSessions(10, time.Hour)
	state := s.NewState()

	assert.False(t, s.ConsumeState(""))
	assert.False(t, s.ConsumeState("unknown"))
	assert.True(t, s.ConsumeState(state))
	assert.False(t, s.ConsumeState(state), "states are single use")
}

func TestSessions_Lifecycle(t *testing.T) {
	s := NewSessions(10, time.Hour)
	stopped := 0
	sess := s.Create(Identity{UID: "u1"}, store.New(store.State{}), func() { stopped++ })
	require.NotEmpty(t, sess.ID)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, s.Count())

	_, ok = s.Get("")
	assert.False(t, ok)

	s.Destroy(sess.ID)
	assert.Equal(t, 1, stopped)
	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
}

func TestSessions_EvictionStopsWatcher(t *testing.T) {
	s := NewSessions(1, time.Hour)
	var stopped []string
	first := s.Create(Identity{UID: "u1"}, store.New(store.State{}), func() { stopped = append(stopped, "u1") })
	s.Create(Identity{UID: "u2"}, store.New(store.State{}), func() { stopped = append(stopped, "u2") })

	assert.Equal(t, []string{"u1"}, stopped)
	_, ok := s.Get(first.ID)
	assert.False(t, ok)
	assert.Len(t, s.Cleaners(), 2)
}
