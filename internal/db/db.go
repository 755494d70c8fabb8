// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	gosqlite3 "github.com/mattn/go-sqlite3"

	"github.com/codr1/Padelicious/internal/config"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// busyTimeoutMillis bounds how long a writer waits for the database lock
// before SQLite reports SQLITE_BUSY.
const busyTimeoutMillis = 5000

type DB struct {
	*sql.DB
	Queries *dbgen.Queries
}

// New opens a SQLite database for the given data source name, applies the
// connection parameters every booking transaction relies on, runs the
// embedded migrations, and returns a DB with generated queries bound to it.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", withConnectionParams(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{
		DB:      sqlDB,
		Queries: dbgen.New(sqlDB),
	}, nil
}

// NewFromConfig opens the database described by cfg. Only the "sqlite"
// driver is supported; the database directory is created when missing.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		return New(cfg.Database.Filename)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// withConnectionParams adds the SQLite DSN parameters the booking flows need:
// foreign keys, a busy timeout, and BEGIN IMMEDIATE transactions so that two
// writers racing for the same slot serialize at transaction start instead of
// failing on lock upgrade. Parameters already present are left untouched.
func withConnectionParams(dataSourceName string) string {
	params := []struct{ key, value string }{
		{"_fk", "1"},
		{"_busy_timeout", fmt.Sprint(busyTimeoutMillis)},
		{"_txlock", "immediate"},
	}
	for _, p := range params {
		if strings.Contains(dataSourceName, p.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dataSourceName, "?") {
			sep = "&"
		}
		dataSourceName += sep + p.key + "=" + p.value
	}
	return dataSourceName
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// runMigrations applies the embedded migrations. A "no change" result is not
// an error.
func runMigrations(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// OpenMigrator opens the SQLite file at path without applying anything and
// returns a migrator over the embedded migrations, for operational tooling.
func OpenMigrator(path string) (*migrate.Migrate, error) {
	sqlDB, err := sql.Open("sqlite3", withConnectionParams(path))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	m, err := newMigrator(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return m, nil
}

// WithTx creates a new DB instance with the given transaction
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{
		DB:      db.DB,
		Queries: dbgen.New(tx),
	}
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return tx, nil
}

// RunInTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics.
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(db.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr gosqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == gosqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == gosqlite3.ErrConstraintPrimaryKey
}
