package trading

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finaura/paper-trading/internal/models"
)

// Errors surfaced by trade execution, matched with errors.Is.
var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrPriceUnavailable  = errors.New("price not available")
)

// Ledger is the durable store trades are applied against. Both calls
// are atomic per account.
type Ledger interface {
	ApplyBuy(userID, symbol string, shares, price decimal.Decimal) (*models.Transaction, decimal.Decimal, error)
	ApplySell(userID, symbol string, shares, price decimal.Decimal) (*models.Transaction, decimal.Decimal, error)
}

// QuoteGetter is the read side of the quote cache.
type QuoteGetter interface {
	Get(symbol string) (models.Quote, bool)
}

// EventPublisher publishes executed trades downstream.
type EventPublisher interface {
	PublishTradeExecuted(ctx context.Context, txn *models.Transaction) error
}

// Executor validates and executes buys and sells at prices resolved
// from the quote cache. Executing a trade never triggers a network
// fetch; the cache holds whatever the refresher last merged.
type Executor struct {
	ledger    Ledger
	quotes    QuoteGetter
	publisher EventPublisher
}

// NewExecutor wires the trade executor. publisher may be nil.
func NewExecutor(ledger Ledger, quotes QuoteGetter, publisher EventPublisher) *Executor {
	return &Executor{
		ledger:    ledger,
		quotes:    quotes,
		publisher: publisher,
	}
}

// BuyResult reports the outcome of a filled buy.
type BuyResult struct {
	Balance   decimal.Decimal `json:"balance"`
	PriceUsed decimal.Decimal `json:"price"`
}

// SellResult reports the outcome of a filled sell.
type SellResult struct {
	Balance   decimal.Decimal `json:"balance"`
	Pnl       decimal.Decimal `json:"pnl"`
	PriceUsed decimal.Decimal `json:"price"`
}

// Buy executes a market buy for the account. clientPrice is only used
// when the cache has no quote for the symbol; callers sit behind a
// trusted boundary (see ResolvePrice).
func (e *Executor) Buy(ctx context.Context, userID, symbol string, shares, clientPrice decimal.Decimal) (*BuyResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || shares.Sign() <= 0 {
		return nil, ErrInvalidParameters
	}

	price := e.ResolvePrice(symbol, clientPrice)
	if price.Sign() <= 0 {
		return nil, ErrPriceUnavailable
	}

	txn, balance, err := e.ledger.ApplyBuy(userID, symbol, shares, price)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, txn)

	return &BuyResult{Balance: balance, PriceUsed: price}, nil
}

// Sell executes a market sell for the account.
func (e *Executor) Sell(ctx context.Context, userID, symbol string, shares, clientPrice decimal.Decimal) (*SellResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || shares.Sign() <= 0 {
		return nil, ErrInvalidParameters
	}

	price := e.ResolvePrice(symbol, clientPrice)
	if price.Sign() <= 0 {
		return nil, ErrPriceUnavailable
	}

	txn, balance, err := e.ledger.ApplySell(userID, symbol, shares, price)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, txn)

	return &SellResult{Balance: balance, Pnl: txn.Pnl, PriceUsed: price}, nil
}

// ResolvePrice returns the live cached price for the symbol, trying
// the dot/hyphen variant providers disagree on, and falls back to the
// caller-supplied price when the cache misses. The fallback trusts the
// caller; this service is not exposed to untrusted traffic directly.
func (e *Executor) ResolvePrice(symbol string, clientPrice decimal.Decimal) decimal.Decimal {
	if quote, ok := e.quotes.Get(symbol); ok {
		return decimal.NewFromFloat(quote.Price)
	}
	if quote, ok := e.quotes.Get(normalizeSymbol(symbol)); ok {
		return decimal.NewFromFloat(quote.Price)
	}
	return clientPrice
}

// normalizeSymbol converts between the dot and hyphen share-class
// conventions, e.g. BRK.B <-> BRK-B.
func normalizeSymbol(symbol string) string {
	if strings.Contains(symbol, ".") {
		return strings.ReplaceAll(symbol, ".", "-")
	}
	return strings.ReplaceAll(symbol, "-", ".")
}

func (e *Executor) publish(ctx context.Context, txn *models.Transaction) {
	if e.publisher == nil {
		return
	}
	// The trade is already committed; a publish failure is logged, not
	// surfaced.
	if err := e.publisher.PublishTradeExecuted(ctx, txn); err != nil {
		log.Printf("failed to publish trade event: %v", err)
	}
}
