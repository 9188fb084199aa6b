// Package store keeps snapshots of the launch records in SQLite so the
// dashboard can start without reaching the remote CSV.
//
// Migrations live in migrations/ and are embedded in the binary; Open applies
// any that are pending.
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Repository reads and writes dataset snapshots.
type Repository struct {
	dbConn *sqlx.DB
}

// NewRepository wraps an open connection.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{dbConn: db}
}

// Open connects to the SQLite file at path, applies pending migrations and
// returns a Repository.
func Open(path string) (*Repository, error) {
	db, err := Connect(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

// Connect establishes a connection to a SQLite database file with WAL mode,
// a busy timeout and foreign keys enabled, and migrates it to the latest
// schema.
func Connect(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to db")
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, migrations)
	if err != nil {
		return errors.Wrap(err, "creating migration provider")
	}

	if _, err := provider.Up(context.Background()); err != nil {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}

// Close releases the connection.
func (repo *Repository) Close() error {
	return errors.Wrap(repo.dbConn.Close(), "closing repo")
}
