package marketdata

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finaura/paper-trading/internal/models"
	"github.com/finaura/paper-trading/internal/quotecache"
)

type fakeSource struct {
	name    string
	quotes  map[string]models.Quote
	err     error
	calls   atomic.Int32
	blockOn context.Context
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) (map[string]models.Quote, error) {
	f.calls.Add(1)
	if f.blockOn != nil {
		// Simulate a hung upstream; honors the fetch deadline.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.quotes, f.err
}

type fakePersister struct {
	saved []map[string]models.Quote
	err   error
}

func (f *fakePersister) Save(ctx context.Context, snapshot map[string]models.Quote) error {
	f.saved = append(f.saved, snapshot)
	return f.err
}

func TestRefresherRefreshOnce(t *testing.T) {
	interval := time.Hour
	timeout := time.Second

	t.Run("primary success stops the chain", func(t *testing.T) {
		cache := quotecache.New()
		primary := &fakeSource{name: "primary", quotes: map[string]models.Quote{"NABIL": {Symbol: "NABIL", Price: 500}}}
		fallback := &fakeSource{name: "fallback", quotes: map[string]models.Quote{"NABIL": {Symbol: "NABIL", Price: 999}}}

		r := NewRefresher(cache, []Source{primary, fallback}, nil, interval, timeout)
		assert.True(t, r.RefreshOnce(context.Background()))

		q, ok := cache.Get("NABIL")
		require.True(t, ok)
		assert.Equal(t, 500.0, q.Price)
		assert.Equal(t, int32(0), fallback.calls.Load())
	})

	t.Run("fallback data is merged when primary fails", func(t *testing.T) {
		cache := quotecache.New()
		primary := &fakeSource{name: "primary", err: errors.New("connection refused")}
		fallback := &fakeSource{name: "fallback", quotes: map[string]models.Quote{"NICA": {Symbol: "NICA", Price: 800}}}

		r := NewRefresher(cache, []Source{primary, fallback}, nil, interval, timeout)
		assert.True(t, r.RefreshOnce(context.Background()))

		q, ok := cache.Get("NICA")
		require.True(t, ok)
		assert.Equal(t, 800.0, q.Price)
	})

	t.Run("empty primary result falls through like an error", func(t *testing.T) {
		cache := quotecache.New()
		primary := &fakeSource{name: "primary", quotes: map[string]models.Quote{}}
		fallback := &fakeSource{name: "fallback", quotes: map[string]models.Quote{"EBL": {Symbol: "EBL", Price: 600}}}

		r := NewRefresher(cache, []Source{primary, fallback}, nil, interval, timeout)
		assert.True(t, r.RefreshOnce(context.Background()))
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("cache is untouched when every source fails", func(t *testing.T) {
		cache := quotecache.New()
		stale := map[string]models.Quote{"NABIL": {Symbol: "NABIL", Price: 500, Volume: 777}}
		cache.Merge(stale)

		primary := &fakeSource{name: "primary", err: errors.New("down")}
		fallback := &fakeSource{name: "fallback", err: errors.New("also down")}

		r := NewRefresher(cache, []Source{primary, fallback}, nil, interval, timeout)
		assert.False(t, r.RefreshOnce(context.Background()))

		q, ok := cache.Get("NABIL")
		require.True(t, ok)
		assert.Equal(t, stale["NABIL"], q, "stale entry survives a failed tick unchanged")
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("hung source is cut off by the fetch timeout", func(t *testing.T) {
		cache := quotecache.New()
		hung := &fakeSource{name: "hung", blockOn: context.Background()}
		fallback := &fakeSource{name: "fallback", quotes: map[string]models.Quote{"SBI": {Symbol: "SBI", Price: 330}}}

		r := NewRefresher(cache, []Source{hung, fallback}, nil, interval, 20*time.Millisecond)

		start := time.Now()
		assert.True(t, r.RefreshOnce(context.Background()))
		assert.Less(t, time.Since(start), time.Second)

		_, ok := cache.Get("SBI")
		assert.True(t, ok)
	})

	t.Run("merged snapshot is persisted", func(t *testing.T) {
		cache := quotecache.New()
		persister := &fakePersister{}
		snapshot := map[string]models.Quote{"NABIL": {Symbol: "NABIL", Price: 500}}
		primary := &fakeSource{name: "primary", quotes: snapshot}

		r := NewRefresher(cache, []Source{primary}, persister, interval, timeout)
		require.True(t, r.RefreshOnce(context.Background()))

		require.Len(t, persister.saved, 1)
		assert.Equal(t, snapshot, persister.saved[0])
	})

	t.Run("persistence failure does not undo the merge", func(t *testing.T) {
		cache := quotecache.New()
		persister := &fakePersister{err: errors.New("redis down")}
		primary := &fakeSource{name: "primary", quotes: map[string]models.Quote{"HBL": {Symbol: "HBL", Price: 210}}}

		r := NewRefresher(cache, []Source{primary}, persister, interval, timeout)
		assert.True(t, r.RefreshOnce(context.Background()))

		_, ok := cache.Get("HBL")
		assert.True(t, ok)
	})
}

func TestRefresherRun(t *testing.T) {
	cache := quotecache.New()
	primary := &fakeSource{name: "primary", quotes: map[string]models.Quote{"NABIL": {Symbol: "NABIL", Price: 500}}}

	r := NewRefresher(cache, []Source{primary}, nil, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// Warm fetch plus at least one tick.
	assert.Eventually(t, func() bool { return primary.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop on context cancellation")
	}
}
