package store

import (
	"sync"
)

// Dispatcher accepts actions. The store implements it; tests substitute a
// Recorder to capture what an operation dispatched.
type Dispatcher interface {
	Dispatch(a Action) Action
}

// Store holds one session's state. HTTP handlers and the realtime watcher
// dispatch into the same store, so every method is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	reducer   Reducer
	state     State
	nextSub   int
	listeners map[int]func(State)
}

// New creates a store with the initial state and RootReducer.
func New(initial State) *Store {
	return NewWithReducer(initial, RootReducer)
}

func NewWithReducer(initial State, r Reducer) *Store {
	return &Store{
		reducer:   r,
		state:     initial.Clone(),
		listeners: make(map[int]func(State)),
	}
}

// Dispatch applies a and notifies subscribers with the resulting state.
// Listeners run outside the lock, in no particular order.
func (s *Store) Dispatch(a Action) Action {
	s.mu.Lock()
	s.state = s.reducer(s.state, a)
	snapshot := s.state.Clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return a
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to run after every dispatch. The returned func
// removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Recorder is a Dispatcher that only records actions.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

func (r *Recorder) Dispatch(a Action) Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return a
}

// Actions returns the recorded actions in dispatch order.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}
