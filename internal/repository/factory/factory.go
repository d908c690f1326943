// Package factory creates repositories based on configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/marketplace/internal/config"
	"github.com/prn-tf/marketplace/internal/repository"
	"github.com/prn-tf/marketplace/internal/repository/postgres"
	"github.com/prn-tf/marketplace/internal/repository/sqlite"
)

// Repositories holds all repository instances.
type Repositories struct {
	Accounts repository.AccountRepository
	Products repository.ProductRepository
	Tokens   repository.TokenRepository
}

// DatabaseHealth is an interface for database health checks.
// This interface satisfies handler.HealthChecker for health endpoints.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

// migrator is implemented by both database backends.
type migrator interface {
	Migrate(ctx context.Context) error
}

// Result contains the created repositories and database connection.
type Result struct {
	Repos    *Repositories
	Database DatabaseHealth
}

// Factory creates repositories based on configuration.
type Factory struct {
	cfg    config.DatabaseConfig
	logger zerolog.Logger
}

// NewFactory creates a new repository factory.
func NewFactory(cfg config.DatabaseConfig, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Str("driver", cfg.Driver).Logger(),
	}
}

// Driver returns the configured database driver.
func (f *Factory) Driver() string {
	return f.cfg.Driver
}

// IsEmbedded returns true if using embedded database.
func (f *Factory) IsEmbedded() bool {
	return f.cfg.IsEmbedded()
}

// Create opens the configured database, applies migrations when
// auto_migrate is set and builds the repositories.
func (f *Factory) Create(ctx context.Context) (*Result, error) {
	var (
		result *Result
		m      migrator
	)

	switch f.cfg.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, SQLiteConfig(f.cfg), f.logger)
		if err != nil {
			return nil, err
		}
		result = &Result{
			Repos: &Repositories{
				Accounts: sqlite.NewAccountRepository(db),
				Products: sqlite.NewProductRepository(db),
				Tokens:   sqlite.NewTokenRepository(db),
			},
			Database: db,
		}
		m = db
	case "postgres":
		db, err := postgres.NewDB(ctx, f.cfg, f.logger)
		if err != nil {
			return nil, err
		}
		result = &Result{
			Repos: &Repositories{
				Accounts: postgres.NewAccountRepository(db),
				Products: postgres.NewProductRepository(db),
				Tokens:   postgres.NewTokenRepository(db),
			},
			Database: db,
		}
		m = db
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", f.cfg.Driver)
	}

	if f.cfg.AutoMigrate {
		if err := m.Migrate(ctx); err != nil {
			_ = result.Database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return result, nil
}

// SQLiteConfig maps the database section onto SQLite connection settings.
func SQLiteConfig(cfg config.DatabaseConfig) sqlite.Config {
	sc := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		sc.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		sc.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		sc.SynchronousMode = cfg.SynchronousMode
	}
	return sc
}
