package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"outlay/internal/database"
	"outlay/internal/database/realtime"
)

// Store is an in-process database.Database. Data is lost on restart.
type Store struct {
	mu     sync.Mutex
	colls  map[string]map[string]database.Document
	hub    *realtime.Hub
	newKey func() string
}

var _ database.Database = (*Store)(nil)

func New(hub *realtime.Hub) *Store {
	if hub == nil {
		hub = realtime.NewHub()
	}
	return &Store{
		colls:  make(map[string]map[string]database.Document),
		hub:    hub,
		newKey: uuid.NewString,
	}
}

// WithKeyFunc replaces the key generator, for deterministic tests.
func (s *Store) WithKeyFunc(f func() string) *Store {
	s.newKey = f
	return s
}

func (s *Store) Push(ctx context.Context, path string, doc database.Document) (string, error) {
	if err := database.ValidatePath(path); err != nil {
		return "", err
	}
	key := s.newKey()
	if err := s.Set(ctx, path, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Store) Set(ctx context.Context, path, key string, doc database.Document) error {
	if err := validate(path, key); err != nil {
		return err
	}
	s.mu.Lock()
	coll := s.colls[path]
	if coll == nil {
		coll = make(map[string]database.Document)
		s.colls[path] = coll
	}
	coll[key] = doc
	s.mu.Unlock()

	s.hub.Changed(ctx, path)
	return nil
}

func (s *Store) Update(ctx context.Context, path, key string, patch database.Patch) error {
	if err := validate(path, key); err != nil {
		return err
	}
	s.mu.Lock()
	doc, ok := s.colls[path][key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %s/%s: %w", path, key, database.ErrNotFound)
	}
	s.colls[path][key] = patch.Apply(doc)
	s.mu.Unlock()

	s.hub.Changed(ctx, path)
	return nil
}

func (s *Store) Remove(ctx context.Context, path, key string) error {
	if err := validate(path, key); err != nil {
		return err
	}
	s.mu.Lock()
	_, existed := s.colls[path][key]
	delete(s.colls[path], key)
	s.mu.Unlock()

	if existed {
		s.hub.Changed(ctx, path)
	}
	return nil
}

func (s *Store) Get(_ context.Context, path, key string) (database.Document, error) {
	if err := validate(path, key); err != nil {
		return database.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.colls[path][key]
	if !ok {
		return database.Document{}, fmt.Errorf("get %s/%s: %w", path, key, database.ErrNotFound)
	}
	return doc, nil
}

func (s *Store) List(_ context.Context, path string) (map[string]database.Document, error) {
	if err := database.ValidatePath(path); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]database.Document, len(s.colls[path]))
	for k, v := range s.colls[path] {
		out[k] = v
	}
	return out, nil
}

func (s *Store) ReplaceAll(ctx context.Context, path string, docs map[string]database.Document) error {
	if err := database.ValidatePath(path); err != nil {
		return err
	}
	coll := make(map[string]database.Document, len(docs))
	for k, v := range docs {
		if err := database.ValidateKey(k); err != nil {
			return err
		}
		coll[k] = v
	}
	s.mu.Lock()
	s.colls[path] = coll
	s.mu.Unlock()

	s.hub.Changed(ctx, path)
	return nil
}

func (s *Store) Watch(ctx context.Context, path string) (<-chan database.Snapshot, error) {
	if err := database.ValidatePath(path); err != nil {
		return nil, err
	}
	return realtime.Watch(ctx, s.hub, path, func(ctx context.Context) (map[string]database.Document, error) {
		return s.List(ctx, path)
	})
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func validate(path, key string) error {
	if err := database.ValidatePath(path); err != nil {
		return err
	}
	return database.ValidateKey(key)
}
