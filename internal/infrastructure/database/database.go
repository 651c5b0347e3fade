package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/revise/internal/infrastructure/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// New opens a database handle for the configured driver. The returned
// cleanup closes the pool.
func New(cfg *config.Config) (*sqlx.DB, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		return newPostgres(cfg.Database.DSN)
	case "sqlite", "sqlite3":
		return newSQLite(cfg.Database.DSN)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func newPostgres(dsn string) (*sqlx.DB, func(), error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres db: %w", err)
	}
	db.SetMaxOpenConns(10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres db: %w", err)
	}

	return db, func() { _ = db.Close() }, nil
}

func newSQLite(dsn string) (*sqlx.DB, func(), error) {
	if dsn == "" {
		dsn = "revise.db"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps :memory: databases alive and sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("enable sqlite wal mode: %w", err)
	}

	return db, func() { _ = db.Close() }, nil
}
