package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Limit order status constants. The transition is one-way:
// active -> cancelled. No engine triggers these orders; they are
// recorded and cancellable only.
const (
	OrderStatusActive    = "active"
	OrderStatusCancelled = "cancelled"
)

// LimitOrder is a passive record of a user's standing order.
type LimitOrder struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"order_type"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Shares      decimal.Decimal `json:"shares"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
