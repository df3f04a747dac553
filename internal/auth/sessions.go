package auth

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"outlay/internal/cache"
	"outlay/internal/store"
)

const stateTTL = 10 * time.Minute

// Session is one signed-in browser. It owns the user's state cache and the
// watcher that keeps it in sync with the database.
type Session struct {
	ID       string
	Identity Identity
	Store    *store.Store
	stop     func()
}

// Sessions keeps sessions and pending oauth states in one LRU cache.
// Evicted or destroyed sessions have their watcher stopped.
type Sessions struct {
	sessions *cache.LRUCache[*Session]
	states   *cache.LRUCache[struct{}]
}

func NewSessions(maxSessions int, ttl time.Duration) *Sessions {
	s := &Sessions{
		sessions: cache.NewLRUCache[*Session](maxSessions, ttl),
		states:   cache.NewLRUCache[struct{}](maxSessions, stateTTL),
	}
	s.sessions.OnEvict(func(id string, sess *Session) {
		if sess.stop != nil {
			sess.stop()
		}
		slog.Debug("Session ended", "session_id", id, "uid", sess.Identity.UID)
	})
	return s
}

// NewState returns a single-use value for the oauth state parameter.
func (s *Sessions) NewState() string {
	state := uuid.NewString()
	s.states.Set(state, struct{}{})
	return state
}

// ConsumeState reports whether state was issued and not yet used.
func (s *Sessions) ConsumeState(state string) bool {
	if state == "" {
		return false
	}
	_, ok := s.states.Take(state)
	return ok
}

// Create starts a session for id. stop is called when the session ends.
func (s *Sessions) Create(id Identity, st *store.Store, stop func()) *Session {
	sess := &Session{ID: uuid.NewString(), Identity: id, Store: st, stop: stop}
	s.sessions.Set(sess.ID, sess)
	return sess
}

func (s *Sessions) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return s.sessions.Get(id)
}

func (s *Sessions) Destroy(id string) {
	s.sessions.Delete(id)
}

func (s *Sessions) Count() int {
	return s.sessions.Size()
}

// Cleaners returns the caches to register with a cache.Manager.
func (s *Sessions) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.sessions, s.states}
}
