package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the schema for the handle's driver. Every statement is
// idempotent, so running it against an already initialized database is a
// no-op.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tables, err := tableStatements(db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range append(tables, indexStatements...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func tableStatements(driver string) ([]string, error) {
	switch driver {
	case "pgx":
		return postgresTables, nil
	case "sqlite3":
		return sqliteTables, nil
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
}

var postgresTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		timezone TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id BIGSERIAL PRIMARY KEY,
		deck_id BIGINT NOT NULL,
		front TEXT NOT NULL,
		back TEXT NOT NULL,
		quiz_types TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS card_progress (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		card_id BIGINT NOT NULL REFERENCES cards (id),
		state TEXT NOT NULL,
		stability DOUBLE PRECISION NOT NULL,
		difficulty DOUBLE PRECISION NOT NULL,
		interval_days INTEGER NOT NULL,
		repetitions INTEGER NOT NULL,
		lapses INTEGER NOT NULL,
		due TIMESTAMPTZ NOT NULL,
		last_review TIMESTAMPTZ,
		total_reviews INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		quality_history TEXT NOT NULL DEFAULT '[]',
		first_seen_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, card_id)
	)`,
	`CREATE TABLE IF NOT EXISTS study_sessions (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		status TEXT NOT NULL,
		current_index INTEGER NOT NULL,
		new_count INTEGER NOT NULL,
		review_count INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		wrong_count INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS session_cards (
		session_id UUID NOT NULL REFERENCES study_sessions (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		card_id BIGINT NOT NULL REFERENCES cards (id),
		is_new BOOLEAN NOT NULL,
		PRIMARY KEY (session_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS wrong_answers (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		card_id BIGINT NOT NULL REFERENCES cards (id),
		session_id UUID REFERENCES study_sessions (id),
		quiz_type TEXT NOT NULL,
		user_answer TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		reviewed BOOLEAN NOT NULL DEFAULT FALSE,
		reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS review_settings (
		user_id BIGINT PRIMARY KEY REFERENCES users (id),
		ratio_mode TEXT NOT NULL,
		custom_review_ratio DOUBLE PRECISION NOT NULL,
		min_new_ratio DOUBLE PRECISION NOT NULL,
		scope TEXT NOT NULL,
		selected_deck_ids TEXT NOT NULL DEFAULT '',
		select_all_decks BOOLEAN NOT NULL,
		daily_goal INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

var sqliteTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		timezone TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		deck_id INTEGER NOT NULL,
		front TEXT NOT NULL,
		back TEXT NOT NULL,
		quiz_types TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS card_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		card_id INTEGER NOT NULL REFERENCES cards (id),
		state TEXT NOT NULL,
		stability REAL NOT NULL,
		difficulty REAL NOT NULL,
		interval_days INTEGER NOT NULL,
		repetitions INTEGER NOT NULL,
		lapses INTEGER NOT NULL,
		due TIMESTAMP NOT NULL,
		last_review TIMESTAMP,
		total_reviews INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		quality_history TEXT NOT NULL DEFAULT '[]',
		first_seen_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, card_id)
	)`,
	`CREATE TABLE IF NOT EXISTS study_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users (id),
		status TEXT NOT NULL,
		current_index INTEGER NOT NULL,
		new_count INTEGER NOT NULL,
		review_count INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		wrong_count INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS session_cards (
		session_id TEXT NOT NULL REFERENCES study_sessions (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		card_id INTEGER NOT NULL REFERENCES cards (id),
		is_new BOOLEAN NOT NULL,
		PRIMARY KEY (session_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS wrong_answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		card_id INTEGER NOT NULL REFERENCES cards (id),
		session_id TEXT REFERENCES study_sessions (id),
		quiz_type TEXT NOT NULL,
		user_answer TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		reviewed BOOLEAN NOT NULL DEFAULT 0,
		reviewed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS review_settings (
		user_id INTEGER PRIMARY KEY REFERENCES users (id),
		ratio_mode TEXT NOT NULL,
		custom_review_ratio REAL NOT NULL,
		min_new_ratio REAL NOT NULL,
		scope TEXT NOT NULL,
		selected_deck_ids TEXT NOT NULL DEFAULT '',
		select_all_decks BOOLEAN NOT NULL,
		daily_goal INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// indexStatements use syntax both drivers accept.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards (deck_id)`,
	`CREATE INDEX IF NOT EXISTS idx_card_progress_user_due ON card_progress (user_id, due)`,
	`CREATE INDEX IF NOT EXISTS idx_study_sessions_user_started ON study_sessions (user_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_wrong_answers_user_created ON wrong_answers (user_id, created_at)`,
}
