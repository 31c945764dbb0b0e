package database

import (
	"fmt"
	"time"

	"github.com/finaura/paper-trading/internal/models"
)

// CreateAuditTrade inserts a mirrored trade record.
func (db *DB) CreateAuditTrade(t *models.AuditTrade) error {
	now := time.Now()
	err := db.conn.QueryRow(
		`INSERT INTO audit_trades (transaction_id, user_id, symbol, side, shares, price, total, pnl, executed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		t.TransactionID, t.UserID, t.Symbol, t.Side, t.Shares, t.Price, t.Total, t.Pnl, t.ExecutedAt, now,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create audit trade: %w", err)
	}
	t.CreatedAt = now
	return nil
}

// AuditTradeExists checks whether a transaction id has already been
// mirrored, so redelivered events can be skipped.
func (db *DB) AuditTradeExists(transactionID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM audit_trades WHERE transaction_id = $1)`,
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check audit trade existence: %w", err)
	}
	return exists, nil
}
