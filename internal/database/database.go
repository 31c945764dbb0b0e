package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Domain errors surfaced by the ledger. Callers match with errors.Is;
// raw storage errors never cross the package boundary for these cases.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("not enough shares")
	ErrAlreadyWatching    = errors.New("symbol already on watchlist")
	ErrOrderNotFound      = errors.New("limit order not found")
)

// DB wraps the PostgreSQL connection and the ledger configuration.
type DB struct {
	conn           *sql.DB
	initialBalance decimal.Decimal
}

// New opens a connection pool and verifies it.
func New(connString string, initialBalance decimal.Decimal) (*DB, error) {
	conn, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{conn: conn, initialBalance: initialBalance}, nil
}

// RunMigrations applies all pending migrations from the given source,
// e.g. "file://db/migrations".
func (db *DB) RunMigrations(sourceURL string) error {
	driver, err := migratepg.WithInstance(db.conn, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InitialBalance returns the balance granted to a new account.
func (db *DB) InitialBalance() decimal.Decimal {
	return db.initialBalance
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
