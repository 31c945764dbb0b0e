package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finaura/paper-trading/internal/models"
)

// CreateLimitOrder records a new limit order in active status. Nothing
// executes these orders; they are bookkeeping only.
func (db *DB) CreateLimitOrder(o *models.LimitOrder) error {
	now := time.Now()
	err := db.conn.QueryRow(
		`INSERT INTO limit_orders (user_id, symbol, order_type, target_price, shares, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		o.UserID, o.Symbol, o.Side, o.TargetPrice, o.Shares, models.OrderStatusActive, now,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to create limit order: %w", err)
	}
	o.Status = models.OrderStatusActive
	o.CreatedAt = now
	return nil
}

// CancelLimitOrder moves an order to cancelled. Cancelling an already
// cancelled order is a no-op, not an error; the transition is one-way.
func (db *DB) CancelLimitOrder(userID string, orderID int64) error {
	result, err := db.conn.Exec(
		`UPDATE limit_orders SET status = $3 WHERE id = $1 AND user_id = $2`,
		orderID, userID, models.OrderStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel limit order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists bool
		err := db.conn.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM limit_orders WHERE id = $1 AND user_id = $2)`,
			orderID, userID,
		).Scan(&exists)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to check limit order: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
	}
	return nil
}

// GetActiveLimitOrders retrieves the user's active limit orders.
func (db *DB) GetActiveLimitOrders(userID string) ([]*models.LimitOrder, error) {
	query := `
		SELECT id, user_id, symbol, order_type, target_price, shares, status, created_at
		FROM limit_orders
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	rows, err := db.conn.Query(query, userID, models.OrderStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query limit orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.LimitOrder
	for rows.Next() {
		var o models.LimitOrder
		err := rows.Scan(&o.ID, &o.UserID, &o.Symbol, &o.Side, &o.TargetPrice, &o.Shares, &o.Status, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan limit order: %w", err)
		}
		orders = append(orders, &o)
	}

	return orders, nil
}

// GetLimitOrder retrieves a single limit order owned by the user.
func (db *DB) GetLimitOrder(userID string, orderID int64) (*models.LimitOrder, error) {
	var o models.LimitOrder
	err := db.conn.QueryRow(
		`SELECT id, user_id, symbol, order_type, target_price, shares, status, created_at
		 FROM limit_orders
		 WHERE id = $1 AND user_id = $2`,
		orderID, userID,
	).Scan(&o.ID, &o.UserID, &o.Symbol, &o.Side, &o.TargetPrice, &o.Shares, &o.Status, &o.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get limit order: %w", err)
	}
	return &o, nil
}
