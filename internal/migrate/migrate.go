// Package migrate applies the embedded SQL schema migrations with goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Dialects understood by goose.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "pgx"
)

// goose keeps its base filesystem and dialect in package globals.
var mu sync.Mutex

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	logger zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Info().Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// SetLogger directs goose's progress messages to logger.
func SetLogger(logger zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	goose.SetLogger(gooseLogger{logger: logger.With().Str("component", "migrate").Logger()})
}

func configure(dialect string, migrations fs.FS) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect %q: %w", dialect, err)
	}
	return nil
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB, dialect string, migrations fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	if err := configure(dialect, migrations); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, dialect string, migrations fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	if err := configure(dialect, migrations); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration through goose's logger.
func Status(ctx context.Context, db *sql.DB, dialect string, migrations fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	if err := configure(dialect, migrations); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect %q: %w", dialect, err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
