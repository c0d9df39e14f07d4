package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres opens the pool and pings it once.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS organizers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		date TIMESTAMPTZ NOT NULL,
		max_capacity INT NOT NULL CHECK (max_capacity >= 0),
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		organizer_id BIGINT REFERENCES organizers(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS events_date_idx ON events(date)`,
	`CREATE TABLE IF NOT EXISTS event_categories (
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		PRIMARY KEY (event_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'registered' CHECK (status IN ('registered','canceled')),
		registration_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS registrations_user_event_idx ON registrations(user_id, event_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_one_active_idx ON registrations(user_id, event_id)
		WHERE status = 'registered'`,
	`CREATE TABLE IF NOT EXISTS feedbacks (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		comment_text TEXT NOT NULL DEFAULT '',
		rating_value INT NOT NULL CHECK (rating_value BETWEEN 1 AND 5),
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the relational schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
