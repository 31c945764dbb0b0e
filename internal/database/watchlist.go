package database

import (
	"fmt"
)

// AddWatchlistSymbol adds a symbol to the user's watchlist. Adding a
// symbol that is already watched returns ErrAlreadyWatching.
func (db *DB) AddWatchlistSymbol(userID, symbol string) error {
	_, err := db.conn.Exec(
		`INSERT INTO watchlist (user_id, symbol) VALUES ($1, $2)`,
		userID, symbol,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyWatching
		}
		return fmt.Errorf("failed to add watchlist symbol: %w", err)
	}
	return nil
}

// RemoveWatchlistSymbol removes a symbol from the user's watchlist.
// Removing a symbol that is not watched is a no-op.
func (db *DB) RemoveWatchlistSymbol(userID, symbol string) error {
	_, err := db.conn.Exec(
		`DELETE FROM watchlist WHERE user_id = $1 AND symbol = $2`,
		userID, symbol,
	)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist symbol: %w", err)
	}
	return nil
}

// GetWatchlist retrieves the user's watched symbols.
func (db *DB) GetWatchlist(userID string) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT symbol FROM watchlist WHERE user_id = $1 ORDER BY symbol`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}
