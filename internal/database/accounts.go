package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// GetBalance returns the account's cash balance. Accounts that have
// never traded have no row yet; they report the initial balance.
func (db *DB) GetBalance(userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.conn.QueryRow(`SELECT balance FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return db.initialBalance, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// EnsureAccount creates the balance row with the initial balance if
// the user has never been seen, and returns the current balance.
func (db *DB) EnsureAccount(userID string) (decimal.Decimal, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := lockAccount(tx, userID, db.initialBalance)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// lockAccount lazily creates the account row and takes a row lock on
// it. The lock is what serializes concurrent trades for one account
// while leaving other accounts fully parallel.
func lockAccount(tx *sql.Tx, userID string, initialBalance decimal.Decimal) (decimal.Decimal, error) {
	_, err := tx.Exec(
		`INSERT INTO accounts (user_id, balance) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, initialBalance,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to ensure account: %w", err)
	}

	var balance decimal.Decimal
	err = tx.QueryRow(`SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock account: %w", err)
	}
	return balance, nil
}
