// Package sqlite implements the storefront repositories on SQLite through sqlx.
//
// WAL mode is enabled on Open so readers never block the single writer
// connection while checkout sagas and admin screens run side by side.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"

	// Pure-Go SQLite driver registered as "sqlite"; keeps the build CGO-free.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is the SQLite implementation of every storefront repository port.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and migrates it to the latest
// schema version.
//
//	store, err := sqlite.Open("./data/storefront.db")
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Migrate applies every pending migration embedded in the binary.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite: migrator: %w", err)
	}
	// m.Close would close db as well, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: migrate up: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for components that share the database,
// such as the saga log.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction. With a single connection, fn must only
// use tx: touching s.db inside it would deadlock.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// translate maps driver errors onto domain sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%s: %w: %v", what, entity.ErrConflict, err)
	}
	return fmt.Errorf("sqlite: %s: %w", what, err)
}

// nullableString returns nil for empty strings so optional references are
// stored as NULL instead of an empty TEXT.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
