// Package db opens the durable store and owns its schema. The handle is
// opened once and injected into every component; there is no package
// global, so tests can substitute their own database freely.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/courier/internal/config"
)

// Open opens a database handle for the configured backend and verifies
// connectivity. The caller owns the returned handle.
func Open(cfg config.StorageConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return openSQLite(cfg.Path)
	case config.DriverPostgres:
		return openPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := handle.Exec("PRAGMA foreign_keys = ON"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return handle, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	handle, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	handle.SetMaxOpenConns(25)
	handle.SetMaxIdleConns(10)
	handle.SetConnMaxLifetime(5 * time.Minute)

	return handle, nil
}

// Migrate applies the schema for the given driver. Statements are
// idempotent, so running migrate repeatedly is safe.
func Migrate(handle *sql.DB, driver string) error {
	schema := SchemaSQL
	if driver == config.DriverPostgres {
		schema = PostgresSchemaSQL
	}

	if _, err := handle.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
