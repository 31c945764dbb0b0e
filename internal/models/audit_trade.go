package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditTrade mirrors an executed trade consumed from the event stream.
// It is a downstream copy for analytics; the transactions table inside
// the ledger remains the source of truth.
type AuditTrade struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Shares        decimal.Decimal `json:"shares"`
	Price         decimal.Decimal `json:"price"`
	Total         decimal.Decimal `json:"total"`
	Pnl           decimal.Decimal `json:"pnl"`
	ExecutedAt    time.Time       `json:"executed_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
