// Package sqldb stores document collections in a SQL table, one row per
// document. SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"outlay/internal/database"
	"outlay/internal/database/realtime"
)

var ErrUnknownDriver = errors.New("unknown sql driver")

type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case SQLite, Postgres:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, s)
	}
}

// sqlName is the name the driver registers with database/sql.
func (d Driver) sqlName() string { return string(d) }

type Store struct {
	db     *sql.DB
	driver Driver
	hub    *realtime.Hub
	now    func() time.Time
}

var _ database.Database = (*Store)(nil)

// Open connects to dsn, applies migrations and returns a ready store.
// For SQLite, dsn is a file path whose directory is created if missing.
func Open(ctx context.Context, driver Driver, dsn string, hub *realtime.Hub) (*Store, error) {
	if driver == SQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(driver.sqlName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == SQLite {
		// One writer at a time avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(driver, dsn); err != nil {
		db.Close()
		return nil, err
	}

	if hub == nil {
		hub = realtime.NewHub()
	}
	slog.InfoContext(ctx, "SQL database ready", "driver", driver)
	return &Store{db: db, driver: driver, hub: hub, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Push(ctx context.Context, path string, doc database.Document) (string, error) {
	if err := database.ValidatePath(path); err != nil {
		return "", err
	}
	key := uuid.NewString()
	if err := s.Set(ctx, path, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

const upsertQuery = `INSERT INTO documents (path, doc_key, description, note, amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (path, doc_key) DO UPDATE SET
	description = excluded.description,
	note = excluded.note,
	amount = excluded.amount,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, ex execer, path, key string, doc database.Document) error {
	_, err := ex.ExecContext(ctx, s.rebind(upsertQuery),
		path, key, doc.Description, doc.Note, doc.Amount, doc.CreatedAt, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", path, key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, path, key string, doc database.Document) error {
	if err := validate(path, key); err != nil {
		return err
	}
	if err := s.upsert(ctx, s.db, path, key, doc); err != nil {
		return err
	}
	s.hub.Changed(ctx, path)
	return nil
}

func (s *Store) Update(ctx context.Context, path, key string, patch database.Patch) error {
	if err := validate(path, key); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := s.get(ctx, tx, path, key)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", path, key, err)
	}
	if err := s.upsert(ctx, tx, path, key, patch.Apply(doc)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}

	s.hub.Changed(ctx, path)
	return nil
}

func (s *Store) Remove(ctx context.Context, path, key string) error {
	if err := validate(path, key); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE path = ? AND doc_key = ?`), path, key)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", path, key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.hub.Changed(ctx, path)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) get(ctx context.Context, q querier, path, key string) (database.Document, error) {
	var doc database.Document
	err := q.QueryRowContext(ctx,
		s.rebind(`SELECT description, note, amount, created_at FROM documents WHERE path = ? AND doc_key = ?`),
		path, key,
	).Scan(&doc.Description, &doc.Note, &doc.Amount, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Document{}, database.ErrNotFound
	}
	if err != nil {
		return database.Document{}, err
	}
	return doc, nil
}

func (s *Store) Get(ctx context.Context, path, key string) (database.Document, error) {
	if err := validate(path, key); err != nil {
		return database.Document{}, err
	}
	doc, err := s.get(ctx, s.db, path, key)
	if err != nil {
		return database.Document{}, fmt.Errorf("get %s/%s: %w", path, key, err)
	}
	return doc, nil
}

func (s *Store) List(ctx context.Context, path string) (map[string]database.Document, error) {
	if err := database.ValidatePath(path); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT doc_key, description, note, amount, created_at FROM documents WHERE path = ?`), path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	defer rows.Close()

	out := make(map[string]database.Document)
	for rows.Next() {
		var key string
		var doc database.Document
		if err := rows.Scan(&key, &doc.Description, &doc.Note, &doc.Amount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		out[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	return out, nil
}

func (s *Store) ReplaceAll(ctx context.Context, path string, docs map[string]database.Document) error {
	if err := database.ValidatePath(path); err != nil {
		return err
	}
	for key := range docs {
		if err := database.ValidateKey(key); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE path = ?`), path); err != nil {
		return fmt.Errorf("clear %s: %w", path, err)
	}
	for key, doc := range docs {
		if err := s.upsert(ctx, tx, path, key, doc); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

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

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validate(path, key string) error {
	if err := database.ValidatePath(path); err != nil {
		return err
	}
	return database.ValidateKey(key)
}
