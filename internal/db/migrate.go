package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE COLLATE NOCASE,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS study_sessions (
		id                     TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_time             TEXT NOT NULL,
		end_time               TEXT NOT NULL,
		study_duration_seconds REAL NOT NULL CHECK(study_duration_seconds >= 0),
		break_duration_seconds REAL NOT NULL CHECK(break_duration_seconds >= 0),
		created_at             TEXT NOT NULL,
		CHECK(end_time > start_time)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON study_sessions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON study_sessions(user_id, start_time)`,

	`CREATE TABLE IF NOT EXISTS session_breaks (
		session_id  TEXT NOT NULL REFERENCES study_sessions(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL CHECK(position >= 0),
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		reason      TEXT NOT NULL CHECK(reason <> ''),
		proof_image TEXT NOT NULL CHECK(proof_image <> ''),
		PRIMARY KEY (session_id, position),
		CHECK(end_time > start_time)
	)`,
}
