package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/taskdef"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed db/migrations/*.sql
var migrationsFS embed.FS

type mysqlStore struct {
	dsn     string
	db      *sql.DB
	options *options

	ownsConnection bool
}

var _ taskdef.Store = (*mysqlStore)(nil)

func NewMysqlStore(host string, port int, user, password, database string, opts ...option) (*mysqlStore, error) {
	options := &options{
		Options:         taskdef.ApplyOptions(),
		ApplyMigrations: true,
	}

	for _, opt := range opts {
		opt(options)
	}

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.InterpolateParams = true

	dsn := cfg.FormatDSN()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if options.MySQLOptions != nil {
		options.MySQLOptions(db)
	}

	s := &mysqlStore{
		dsn:            dsn,
		db:             db,
		options:        options,
		ownsConnection: true,
	}

	if options.ApplyMigrations {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewMysqlStoreWithDB creates a store using an existing database connection. The store does not close the
// connection. Migrations need a connection allowing multiple statements and are only applied with
// WithApplyMigrations(true).
func NewMysqlStoreWithDB(db *sql.DB, opts ...option) (*mysqlStore, error) {
	options := &options{
		Options: taskdef.ApplyOptions(),
	}

	for _, opt := range opts {
		opt(options)
	}

	s := &mysqlStore{
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

func (s *mysqlStore) Close() error {
	if !s.ownsConnection {
		return nil
	}

	return s.db.Close()
}

// Migrate applies any pending database migrations.
func (s *mysqlStore) Migrate() error {
	var db *sql.DB
	var needsClose bool

	if s.dsn != "" {
		cfg, err := mysql.ParseDSN(s.dsn)
		if err != nil {
			return fmt.Errorf("parsing dsn: %w", err)
		}
		cfg.MultiStatements = true

		db, err = sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return fmt.Errorf("opening schema database: %w", err)
		}
		needsClose = true
	} else {
		db = s.db
	}

	dbi, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	migrations, err := iofs.New(migrationsFS, "db/migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", migrations, "mysql", dbi)
	if err != nil {
		return fmt.Errorf("creating migration: %w", err)
	}

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	if needsClose {
		if err := dbi.Close(); err != nil {
			return fmt.Errorf("closing schema database: %w", err)
		}
	}

	s.options.Logger.Debug("Applied task definition migrations", slog.String("store", "mysql"))

	return nil
}

func (s *mysqlStore) GetTaskDef(ctx context.Context, name string) (*core.TaskDefinition, error) {
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

func (s *mysqlStore) PutTaskDef(ctx context.Context, def *core.TaskDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	data, err := taskdef.Marshal(def)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO `task_definitions` (name, definition) VALUES (?, ?) ON DUPLICATE KEY UPDATE definition = VALUES(definition)",
		def.Name,
		string(data),
	); err != nil {
		return fmt.Errorf("storing task definition %q: %w", def.Name, err)
	}

	return nil
}

func (s *mysqlStore) DeleteTaskDef(ctx context.Context, name string) error {
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

func (s *mysqlStore) ListTaskDefs(ctx context.Context) ([]*core.TaskDefinition, error) {
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
