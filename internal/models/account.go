package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds one user's cash balance. The user id is opaque and
// issued by the identity layer in front of this service.
type Account struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
