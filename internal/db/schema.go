package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables and indexes at startup. The unique index on
// (event_id, lower(email)) is what makes duplicate registrations impossible
// even when two requests race past the application-level check.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		date        TIMESTAMPTZ NOT NULL,
		venue       TEXT NOT NULL,
		capacity    INT NOT NULL,
		registered  INT NOT NULL DEFAULT 0,
		category    TEXT NOT NULL,
		image       TEXT,
		tags        TEXT[] NOT NULL DEFAULT '{}',
		status      TEXT NOT NULL DEFAULT 'upcoming',
		created_by  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id            TEXT PRIMARY KEY,
		event_id      TEXT NOT NULL,
		event_title   TEXT NOT NULL,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		phone         TEXT NOT NULL,
		department    TEXT NOT NULL,
		year          TEXT NOT NULL,
		roll_number   TEXT NOT NULL,
		ticket_id     TEXT NOT NULL,
		registered_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_event_email_uniq
		ON registrations (event_id, lower(email))`,
	`CREATE INDEX IF NOT EXISTS registrations_event_id_idx
		ON registrations (event_id)`,
	`CREATE INDEX IF NOT EXISTS events_date_idx
		ON events (date, id)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'admin',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS admins_email_uniq
		ON admins (lower(email))`,
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
