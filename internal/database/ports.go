// Package database defines the keyed document store that owns all durable
// expense data. The application only ever holds a cache of it.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid path")
	ErrInvalidKey  = errors.New("invalid key")
)

// Document is the stored form of an expense. CreatedAt is epoch milliseconds.
type Document struct {
	Description string `json:"description" yaml:"description"`
	Note        string `json:"note" yaml:"note"`
	Amount      int64  `json:"amount" yaml:"amount"`
	CreatedAt   int64  `json:"createdAt" yaml:"createdAt"`
}

// Patch is a partial document update. Nil fields are left untouched.
type Patch struct {
	Description *string `json:"description,omitempty"`
	Note        *string `json:"note,omitempty"`
	Amount      *int64  `json:"amount,omitempty"`
	CreatedAt   *int64  `json:"createdAt,omitempty"`
}

// Apply merges p into d.
func (p Patch) Apply(d Document) Document {
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Note != nil {
		d.Note = *p.Note
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.CreatedAt != nil {
		d.CreatedAt = *p.CreatedAt
	}
	return d
}

// Snapshot is the full value of a collection at one point in time.
type Snapshot struct {
	Path string
	Docs map[string]Document
}

// Database is a set of keyed collections addressed by slash-separated paths.
type Database interface {
	// Push stores doc under a newly generated unique key and returns the key.
	Push(ctx context.Context, path string, doc Document) (string, error)
	// Set creates or replaces the document at key.
	Set(ctx context.Context, path, key string, doc Document) error
	// Update merges patch into an existing document, or returns ErrNotFound.
	Update(ctx context.Context, path, key string, patch Patch) error
	// Remove deletes the document at key. Removing a missing key is not an error.
	Remove(ctx context.Context, path, key string) error
	// Get returns the document at key, or ErrNotFound.
	Get(ctx context.Context, path, key string) (Document, error)
	// List returns every document in the collection.
	List(ctx context.Context, path string) (map[string]Document, error)
	// ReplaceAll sets the whole collection to docs.
	ReplaceAll(ctx context.Context, path string, docs map[string]Document) error
	// Watch emits the collection's value now and after every change, until
	// ctx is done. Only the latest value is buffered.
	Watch(ctx context.Context, path string) (<-chan Snapshot, error)
	Ping(ctx context.Context) error
	Close() error
}

// ExpensesPath is the collection holding uid's expenses.
func ExpensesPath(uid string) string {
	return "users/" + uid + "/expenses"
}

// UIDFromPath extracts the user id from an ExpensesPath.
func UIDFromPath(path string) (string, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != "users" || parts[2] != "expenses" || parts[1] == "" {
		return "", fmt.Errorf("%w: %q is not an expenses collection", ErrInvalidPath, path)
	}
	return parts[1], nil
}

// ValidatePath rejects empty paths and empty or relative segments.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return nil
}

// ValidateKey rejects keys that could not be addressed as a path segment.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, "/.#$[]") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
