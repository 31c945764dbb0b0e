package database

import (
	"github.com/shopspring/decimal"

	"github.com/finaura/paper-trading/internal/models"
)

// Snapshot is the full per-account view served to clients.
type Snapshot struct {
	UserID       string                `json:"user_id"`
	Balance      decimal.Decimal       `json:"balance"`
	Positions    []*models.Position    `json:"positions"`
	Transactions []*models.Transaction `json:"transactions"`
	Watchlist    []string              `json:"watchlist"`
	LimitOrders  []*models.LimitOrder  `json:"limit_orders"`
}

// transactionHistoryLimit bounds the snapshot's transaction list.
const transactionHistoryLimit = 500

// GetAccountSnapshot assembles balance, positions, the most recent 500
// transactions (newest first), watchlist, and active limit orders.
// This is a read-only view; it takes no locks beyond the individual
// statement snapshots.
func (db *DB) GetAccountSnapshot(userID string) (*Snapshot, error) {
	balance, err := db.GetBalance(userID)
	if err != nil {
		return nil, err
	}

	positions, err := db.GetPositions(userID)
	if err != nil {
		return nil, err
	}

	transactions, err := db.GetRecentTransactions(userID, transactionHistoryLimit)
	if err != nil {
		return nil, err
	}

	watchlist, err := db.GetWatchlist(userID)
	if err != nil {
		return nil, err
	}

	orders, err := db.GetActiveLimitOrders(userID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		UserID:       userID,
		Balance:      balance,
		Positions:    positions,
		Transactions: transactions,
		Watchlist:    watchlist,
		LimitOrders:  orders,
	}, nil
}
