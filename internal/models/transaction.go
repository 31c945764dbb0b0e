package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade side constants
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Transaction is an immutable ledger entry. Insertion order (the id
// sequence) is the canonical ordering, not the timestamp.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"type"`
	Shares    decimal.Decimal `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Pnl       decimal.Decimal `json:"pnl"`
	CreatedAt time.Time       `json:"timestamp"`
}

// TradeEvent is the Kafka payload published after a fill commits.
type TradeEvent struct {
	EventType   string       `json:"event_type"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Symbol      string       `json:"symbol"`
	Timestamp   time.Time    `json:"timestamp"`
}
