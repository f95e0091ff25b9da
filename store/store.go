// Package store persists the per-user custom variable namespace in SQLite.
//
// A [Store] implements [variable.CustomSource], so it can be handed directly
// to [variable.WithCustomSource].
package store

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/variable"
)

// Store errors.
var (
	ErrOpen      = variable.NewError("open custom variable store")
	ErrMigrate   = variable.NewError("migrate custom variable store")
	ErrNotFound  = variable.NewError("custom variable not found")
	ErrInvalid   = variable.NewError("invalid custom variable")
	ErrDuplicate = variable.NewError("custom variable already exists")
	ErrQuery     = variable.NewError("custom variable query failed")
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a SQLite-backed repository of custom variables.
type Store struct {
	db     *sql.DB
	logger log.Logger
	now    func() time.Time
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock sets the time source for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (creating if necessary) the database at path and migrates it to
// the current schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	return open(ctx, db, opts...)
}

// OpenInMemory opens a private in-memory database, mainly for tests.
func OpenInMemory(ctx context.Context, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, ErrOpen.Wrap(err)
	}

	// each connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)

	return open(ctx, db, opts...)
}

func open(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()

		return nil, ErrOpen.Wrap(err)
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return ErrMigrate.Wrap(err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return ErrMigrate.Wrap(err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return ErrMigrate.Wrap(err)
	}

	for _, r := range results {
		s.logger.DebugContext(ctx, "store migrated",
			slog.Int64("version", r.Source.Version),
			slog.Duration("elapsed", r.Duration))
	}

	return nil
}
