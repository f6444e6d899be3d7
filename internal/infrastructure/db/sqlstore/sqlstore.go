// Package sqlstore implements ports.Store on database/sql. Postgres (lib/pq)
// is the production driver; sqlite3 is supported for local development and
// tests. Cascading deletes are enforced by foreign keys.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/adboard/board-api/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dialect captures the few places where the supported drivers differ.
type dialect struct {
	driver string
	// forUpdate is appended to row reads inside a transaction.
	forUpdate string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return dialect{driver: driver, forUpdate: " FOR UPDATE"}, nil
	case DriverSQLite:
		return dialect{driver: driver}, nil
	default:
		return dialect{}, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// Config captures the settings required to open the database.
type Config struct {
	Driver string
	DSN    string
}

// Store implements ports.Store.
type Store struct {
	db      *sql.DB
	dialect dialect
	repos
}

// Open connects, pings and returns a Store. Migrations are not applied; call
// Migrate.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if d.driver == DriverSQLite && !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore open: %w", err)
	}
	if d.driver == DriverSQLite {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore ping: %w", err)
	}
	return New(db, d.driver)
}

// New wraps an already opened handle.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:      db,
		dialect: d,
		repos:   repos{q: db},
	}, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txRepos := repos{q: tx, lock: s.dialect.forUpdate}
	if err := fn(ctx, txRepos); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// repos binds the repositories to a connection or a transaction.
type repos struct {
	q    queryer
	lock string
}

func (r repos) Users() ports.UserRepository {
	return &UserRepository{q: r.q, lock: r.lock}
}

func (r repos) Advertisements() ports.AdvertisementRepository {
	return &AdvertisementRepository{q: r.q, lock: r.lock}
}

func (r repos) Comments() ports.CommentRepository {
	return &CommentRepository{q: r.q, lock: r.lock}
}
