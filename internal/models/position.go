package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a current holding. Rows only exist while shares
// are positive; a sell that exhausts the position deletes the row.
type Position struct {
	ID        int             `json:"id"`
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Shares    decimal.Decimal `json:"shares"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
