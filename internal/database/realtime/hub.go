// Package realtime fans collection change notifications out to watchers.
//
// Backends call Changed after every successful local write. Changes made by
// other processes arrive through Deliver (see the amqp bridge), which wakes
// local watchers without forwarding the change again.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"outlay/internal/database"
)

// Forwarder receives every locally originated change.
type Forwarder func(ctx context.Context, path string)

type Hub struct {
	mu         sync.Mutex
	subs       map[string]map[chan struct{}]struct{}
	forwarders []Forwarder
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Forward registers f to be called on every local change.
func (h *Hub) Forward(f Forwarder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forwarders = append(h.forwarders, f)
}

// Subscribe returns a channel that is signalled after each change to path.
// Signals coalesce: the channel holds at most one pending signal.
func (h *Hub) Subscribe(path string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	if h.subs[path] == nil {
		h.subs[path] = make(map[chan struct{}]struct{})
	}
	h.subs[path][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[path], ch)
			if len(h.subs[path]) == 0 {
				delete(h.subs, path)
			}
			h.mu.Unlock()
		})
	}
}

// Changed records a local write: watchers are woken and forwarders called.
func (h *Hub) Changed(ctx context.Context, path string) {
	h.Deliver(path)

	h.mu.Lock()
	forwarders := append([]Forwarder(nil), h.forwarders...)
	h.mu.Unlock()
	for _, f := range forwarders {
		f(ctx, path)
	}
}

// Deliver wakes the watchers of path.
func (h *Hub) Deliver(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[path] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers returns the number of active subscriptions to path.
func (h *Hub) Watchers(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[path])
}

// Loader reads the current value of a collection.
type Loader func(ctx context.Context) (map[string]database.Document, error)

// Watch implements database.Database.Watch on top of a hub and a loader.
// The initial load error is returned to the caller; later load errors are
// logged and the watcher waits for the next change.
func Watch(ctx context.Context, h *Hub, path string, load Loader) (<-chan database.Snapshot, error) {
	signal, unsubscribe := h.Subscribe(path)

	docs, err := load(ctx)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	out := make(chan database.Snapshot, 1)
	out <- database.Snapshot{Path: path, Docs: docs}

	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
			docs, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.WarnContext(ctx, "Watch reload failed", "path", path, "error", err)
				continue
			}
			sendLatest(out, database.Snapshot{Path: path, Docs: docs})
		}
	}()
	return out, nil
}

// sendLatest replaces any unread snapshot with snap.
func sendLatest(out chan database.Snapshot, snap database.Snapshot) {
	for {
		select {
		case out <- snap:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
