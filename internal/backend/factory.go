package backend

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/config"
	"outlay/internal/database/memory"
	"outlay/internal/database/realtime"
	"outlay/internal/database/sqldb"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresURL:  appConfig.PostgresURL,
	}, nil
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	hub := realtime.NewHub()

	switch config.Type {
	case MemoryBackend:
		f.logger.Warn("Using memory backend, data is lost on restart")
		return &BackendResult{Database: memory.New(hub), Hub: hub, Cleanup: func() error { return nil }}, nil

	case SQLiteBackend, PostgresBackend:
		driver, dsn := sqldb.SQLite, config.SQLiteDBPath
		if config.Type == PostgresBackend {
			driver, dsn = sqldb.Postgres, config.PostgresURL
		}
		db, err := sqldb.Open(ctx, driver, dsn, hub)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
		}
		f.logger.Info("Initialized SQL backend", "type", config.Type)
		return &BackendResult{Database: db, Hub: hub, Cleanup: db.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
