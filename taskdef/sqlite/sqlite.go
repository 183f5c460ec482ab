package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed db/migrations/*.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db      *sql.DB
	options *options

	ownsConnection bool
}

var _ taskdef.Store = (*sqliteStore)(nil)

// NewInMemoryStore returns a store backed by a private in-memory database.
func NewInMemoryStore(opts ...option) (*sqliteStore, error) {
	s, err := newSqliteStore("file::memory:", opts...)
	if err != nil {
		return nil, err
	}

	// Every connection to an in-memory database gets its own database
	s.db.SetMaxOpenConns(1)

	if s.options.ApplyMigrations {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func NewSqliteStore(path string, opts ...option) (*sqliteStore, error) {
	s, err := newSqliteStore(fmt.Sprintf("file:%v?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path), opts...)
	if err != nil {
		return nil, err
	}

	if s.options.ApplyMigrations {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewSqliteStoreWithDB creates a store using an existing database connection. The store does not close the
// connection and does not apply migrations unless WithApplyMigrations(true) is given.
func NewSqliteStoreWithDB(db *sql.DB, opts ...option) (*sqliteStore, error) {
	options := &options{
		Options: taskdef.ApplyOptions(),
	}

	for _, opt := range opts {
		opt(options)
	}

	s := &sqliteStore{
		db:      db,
		options: options,
	}

	if options.ApplyMigrations {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func newSqliteStore(dsn string, opts ...option) (*sqliteStore, error) {
	options := &options{
		Options:         taskdef.ApplyOptions(),
		ApplyMigrations: true,
	}

	for _, opt := range opts {
		opt(options)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &sqliteStore{
		db:             db,
		options:        options,
		ownsConnection: true,
	}, nil
}

func (s *sqliteStore) Close() error {
	if !s.ownsConnection {
		return nil
	}

	return s.db.Close()
}

// Migrate applies any pending database migrations.
func (s *sqliteStore) Migrate() error {
	dbi, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	migrations, err := iofs.New(migrationsFS, "db/migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", migrations, "sqlite", dbi)
	if err != nil {
		return fmt.Errorf("creating migration: %w", err)
	}

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	s.options.Logger.Debug("Applied task definition migrations", slog.String("store", "sqlite"))

	return nil
}

func (s *sqliteStore) GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error) {
	row := s.db.QueryRowContext(ctx, "SELECT definition FROM `task_definitions` WHERE name = ?", name)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskdef.ErrNotFound
		}

		return nil, fmt.Errorf("getting task definition %q: %w", name, err)
	}

	return taskdef.Unmarshal(data)
}

func (s *sqliteStore) PutTaskDef(ctx context.Context, def *core.TaskDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	data, err := taskdef.Marshal(def)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO `task_definitions` (name, definition) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET definition = excluded.definition, updated_at = CURRENT_TIMESTAMP",
		def.Name,
		string(data),
	); err != nil {
		return fmt.Errorf("storing task definition %q: %w", def.Name, err)
	}

	return nil
}

func (s *sqliteStore) DeleteTaskDef(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM `task_definitions` WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting task definition %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return taskdef.ErrNotFound
	}

	return nil
}

func (s *sqliteStore) ListTaskDefs(ctx context.Context) ([]*core.TaskDefinition, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT definition FROM `task_definitions` ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing task definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]*core.TaskDefinition, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning task definition: %w", err)
		}

		def, err := taskdef.Unmarshal(data)
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, rows.Err()
}
