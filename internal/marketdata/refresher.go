package marketdata

import (
	"context"
	"log"
	"time"

	"github.com/finaura/paper-trading/internal/models"
	"github.com/finaura/paper-trading/internal/quotecache"
)

// SnapshotPersister receives each merged snapshot for durable storage.
// Persistence is best-effort; failures never affect the cache.
type SnapshotPersister interface {
	Save(ctx context.Context, snapshot map[string]models.Quote) error
}

// Refresher keeps the quote cache fresh. It runs one warm fetch at
// start, then fetches on a fixed interval, trying each source in
// priority order and merging the first non-empty result. Source
// failures are absorbed here; the only caller-visible effect of a bad
// tick is a stale cache.
type Refresher struct {
	cache     *quotecache.Cache
	sources   []Source
	persister SnapshotPersister
	interval  time.Duration
	timeout   time.Duration
}

// NewRefresher wires the scheduler. persister may be nil.
func NewRefresher(cache *quotecache.Cache, sources []Source, persister SnapshotPersister, interval, timeout time.Duration) *Refresher {
	return &Refresher{
		cache:     cache,
		sources:   sources,
		persister: persister,
		interval:  interval,
		timeout:   timeout,
	}
}

// Run blocks until ctx is cancelled. The loop itself never terminates
// because of a source failure.
func (r *Refresher) Run(ctx context.Context) {
	r.RefreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("quote refresher shutting down")
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce walks the source chain and merges the first non-empty
// snapshot. Returns true if the cache was updated.
func (r *Refresher) RefreshOnce(ctx context.Context) bool {
	for _, source := range r.sources {
		snapshot, err := r.fetch(ctx, source)
		if err != nil {
			log.Printf("quote source %s failed: %v", source.Name(), err)
			continue
		}
		if len(snapshot) == 0 {
			log.Printf("quote source %s returned no data", source.Name())
			continue
		}

		r.cache.Merge(snapshot)
		log.Printf("merged %d quotes from %s", len(snapshot), source.Name())

		if r.persister != nil {
			if err := r.persister.Save(ctx, snapshot); err != nil {
				log.Printf("failed to persist quote snapshot: %v", err)
			}
		}
		return true
	}

	log.Println("all quote sources failed, keeping cached values")
	return false
}

func (r *Refresher) fetch(ctx context.Context, source Source) (map[string]models.Quote, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return source.Fetch(fetchCtx)
}
