package quotecache

import (
	"sync"

	"github.com/finaura/paper-trading/internal/models"
)

// Cache is the process-wide map of symbol to latest known quote. It is
// written by the refresh scheduler and read by trade execution and the
// quote listing endpoint. Entries are never evicted; a stale quote
// persists until a fresher snapshot for that symbol merges over it.
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		quotes: make(map[string]models.Quote),
	}
}

// Merge replaces each symbol's entry with the one from the snapshot.
// Symbols absent from the snapshot are left untouched. Each entry is
// replaced whole, never field by field.
func (c *Cache) Merge(snapshot map[string]models.Quote) {
	if len(snapshot) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for symbol, quote := range snapshot {
		c.quotes[symbol] = quote
	}
}

// Get returns the cached quote for a symbol, if any.
func (c *Cache) Get(symbol string) (models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[symbol]
	return q, ok
}

// GetAll returns a point-in-time copy of every cached quote. Order is
// unspecified.
func (c *Cache) GetAll() []models.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quotes := make([]models.Quote, 0, len(c.quotes))
	for _, q := range c.quotes {
		quotes = append(quotes, q)
	}
	return quotes
}

// Len returns the number of cached symbols.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
