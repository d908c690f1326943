// Package main is the entry point for the marketplace database migration tool.
// It applies the embedded schema of the configured backend (SQLite or PostgreSQL).
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/prn-tf/marketplace/internal/config"
	"github.com/prn-tf/marketplace/internal/logging"
	"github.com/prn-tf/marketplace/internal/migrate"
	"github.com/prn-tf/marketplace/internal/repository/factory"
	"github.com/prn-tf/marketplace/internal/repository/postgres"
	"github.com/prn-tf/marketplace/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Marketplace Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up", "down", "status", "current":
		if err := run(context.Background(), command); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := config.Load(os.Getenv("MARKETPLACE_CONFIG"))
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	migrate.SetLogger(logger)

	db, dialect, migrations, closeDB, err := open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	switch command {
	case "up":
		err = migrate.Up(ctx, db, dialect, migrations)
	case "down":
		err = migrate.Down(ctx, db, dialect, migrations)
	case "status":
		err = migrate.Status(ctx, db, dialect, migrations)
	}
	if err != nil {
		return err
	}

	version, err := migrate.Version(ctx, db, dialect)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d\n", version)
	return nil
}

// open returns a database/sql handle onto the configured backend together
// with its goose dialect and embedded migrations.
func open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*sql.DB, string, fs.FS, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, factory.SQLiteConfig(cfg), logger)
		if err != nil {
			return nil, "", nil, nil, err
		}
		return db.DB(), migrate.DialectSQLite, sqlite.Migrations(), func() { _ = db.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, "", nil, nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(db.Pool)
		return sqlDB, migrate.DialectPostgres, postgres.Migrations(), func() {
			_ = sqlDB.Close()
			_ = db.Close()
		}, nil
	}
	return nil, "", nil, nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
}

func printUsage() {
	fmt.Println(`Marketplace Migration Tool

Usage:
  marketplace-migrate <command>

Commands:
  up          Run all pending migrations
  down        Roll back the last migration
  status      Show the state of every migration
  current     Print the current schema version
  version     Print version information
  help        Show this help message

Environment Variables:
  MARKETPLACE_CONFIG            Path to the configuration file
  MARKETPLACE_DATABASE_DRIVER   sqlite or postgres
  MARKETPLACE_DATABASE_PATH     SQLite database file

Examples:
  marketplace-migrate up
  MARKETPLACE_DATABASE_DRIVER=postgres marketplace-migrate status`)
}
