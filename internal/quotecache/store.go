package quotecache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/finaura/paper-trading/internal/models"
)

const snapshotHashKey = "quotes:latest"

// SnapshotStore persists the latest quote snapshot to Redis so a
// restarted process can warm its in-memory cache before the first
// upstream fetch. Request handling never reads from Redis; the store
// is written best-effort by the scheduler and read once at boot.
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore creates a store backed by the given Redis client.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Save writes each quote in the snapshot as a field of one hash.
func (s *SnapshotStore) Save(ctx context.Context, snapshot map[string]models.Quote) error {
	if len(snapshot) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for symbol, quote := range snapshot {
		data, err := json.Marshal(quote)
		if err != nil {
			return fmt.Errorf("failed to marshal quote for %s: %w", symbol, err)
		}
		pipe.HSet(ctx, snapshotHashKey, symbol, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist quote snapshot: %w", err)
	}
	return nil
}

// Load returns the last persisted snapshot. Fields that fail to decode
// are skipped rather than failing the whole load.
func (s *SnapshotStore) Load(ctx context.Context) (map[string]models.Quote, error) {
	fields, err := s.client.HGetAll(ctx, snapshotHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load quote snapshot: %w", err)
	}

	snapshot := make(map[string]models.Quote, len(fields))
	for symbol, data := range fields {
		var q models.Quote
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			continue
		}
		snapshot[symbol] = q
	}
	return snapshot, nil
}
