package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"badui/migrations"
)

// Dialect identifies the SQL backend behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqlitePragmas are applied to every SQLite connection.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is a handle for reads and writes. Inside UnitOfWork it is bound to a
// transaction; the Session embedded in DB runs each statement on its own.
type Session struct {
	q querier
}

// DB wraps a database/sql connection pool.
type DB struct {
	*Session
	SQL     *sql.DB
	Dialect Dialect
}

// ParseURL splits a DATABASE_URL into a driver name, a DSN and a dialect.
// postgres:// and postgresql:// select PostgreSQL; sqlite:// or a bare path select SQLite.
func ParseURL(databaseURL string) (driver, dsn string, dialect Dialect, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "pgx", databaseURL, DialectPostgres, nil
	case databaseURL == "":
		return "", "", "", errors.New("database URL is empty")
	}

	path := strings.TrimPrefix(databaseURL, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		return "", "", "", fmt.Errorf("invalid sqlite URL %q", databaseURL)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "sqlite", "file:" + path + sep + sqlitePragmas, DialectSQLite, nil
}

// New opens the database described by databaseURL and verifies the connection.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	driver, dsn, dialect, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		path := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		// One connection serializes writers on the database file.
		sqlDB.SetMaxOpenConns(1)
	case DialectPostgres:
		sqlDB.SetMaxOpenConns(10)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Session: &Session{q: sqlDB}, SQL: sqlDB, Dialect: dialect}, nil
}

// RunMigrations runs all embedded SQL migrations for the active dialect.
func (d *DB) RunMigrations() error {
	sourceDriver, err := iofs.New(migrations.FS, string(d.Dialect))
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var dbDriver database.Driver
	switch d.Dialect {
	case DialectSQLite:
		dbDriver, err = migratesqlite.WithInstance(d.SQL, &migratesqlite.Config{})
	case DialectPostgres:
		dbDriver, err = migratepgx.WithInstance(d.SQL, &migratepgx.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", d.Dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// The migrator is not closed: closing it would close d.SQL.
	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(d.Dialect), dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// UnitOfWork runs fn inside a single transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics.
func (d *DB) UnitOfWork(ctx context.Context, fn func(s *Session) error) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&Session{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	committed = true
	return nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.SQL.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
