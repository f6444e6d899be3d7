package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version     int
	Description string
	Postgres    string
	SQLite      string
}

// Migrations returns the schema history in order.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create users table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(25) NOT NULL UNIQUE,
					password_hash VARCHAR(250) NOT NULL,
					fullname VARCHAR(50),
					email VARCHAR(50),
					role VARCHAR(16) NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN', 'MODERATOR')),
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS users (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					username TEXT NOT NULL UNIQUE,
					password_hash TEXT NOT NULL,
					fullname TEXT,
					email TEXT,
					role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN', 'MODERATOR')),
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);`,
		},
		{
			Version:     2,
			Description: "create advertisements table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS advertisements (
					id BIGSERIAL PRIMARY KEY,
					title VARCHAR(50) NOT NULL,
					body VARCHAR(2500),
					adv_group VARCHAR(16) NOT NULL DEFAULT 'SELL' CHECK (adv_group IN ('SELL', 'BUY', 'SERVICE')),
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_advertisements_author_id ON advertisements(author_id);
				CREATE INDEX IF NOT EXISTS idx_advertisements_group ON advertisements(adv_group);`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS advertisements (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					body TEXT,
					adv_group TEXT NOT NULL DEFAULT 'SELL' CHECK (adv_group IN ('SELL', 'BUY', 'SERVICE')),
					is_active BOOLEAN NOT NULL DEFAULT 1,
					author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
				CREATE INDEX IF NOT EXISTS idx_advertisements_author_id ON advertisements(author_id);
				CREATE INDEX IF NOT EXISTS idx_advertisements_group ON advertisements(adv_group);`,
		},
		{
			Version:     3,
			Description: "create comments table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS comments (
					id BIGSERIAL PRIMARY KEY,
					body VARCHAR(500) NOT NULL,
					author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					advertisement_id BIGINT NOT NULL REFERENCES advertisements(id) ON DELETE CASCADE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_comments_advertisement_id ON comments(advertisement_id);
				CREATE INDEX IF NOT EXISTS idx_comments_author_id ON comments(author_id);`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS comments (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					body TEXT NOT NULL,
					author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					advertisement_id INTEGER NOT NULL REFERENCES advertisements(id) ON DELETE CASCADE,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
				CREATE INDEX IF NOT EXISTS idx_comments_advertisement_id ON comments(advertisement_id);
				CREATE INDEX IF NOT EXISTS idx_comments_author_id ON comments(author_id);`,
		},
	}
}

// Migrate applies every migration newer than the recorded schema version.
// Each step runs in its own transaction.
func (s *Store) Migrate(ctx context.Context, log zerolog.Logger) error {
	const createTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range Migrations() {
		if m.Version <= current {
			continue
		}
		stmt := m.Postgres
		if s.dialect.driver == DriverSQLite {
			stmt = m.SQLite
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description, applied_at) VALUES ($1, $2, $3)`,
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: record: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.Version, err)
		}
		log.Info().Int("version", m.Version).Str("description", m.Description).Msg("migration applied")
	}
	return nil
}
