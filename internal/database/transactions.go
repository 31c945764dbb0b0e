package database

import (
	"fmt"

	"github.com/finaura/paper-trading/internal/models"
)

// GetRecentTransactions retrieves a user's most recent transactions,
// newest first. The id sequence is the canonical order; timestamps are
// informational only.
func (db *DB) GetRecentTransactions(userID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, side, shares, price, total, pnl, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Side, &t.Shares, &t.Price, &t.Total, &t.Pnl, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	return transactions, nil
}
