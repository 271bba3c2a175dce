package quota

import (
	"context"
	"time"

	"github.com/riskibarqy/betstats/internal/platform/cache"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
)

// MemoryTracker keeps counters in process; it assumes one ingestion process at a time.
type MemoryTracker struct {
	counters *cache.Counters
}

func NewMemoryTracker(counters *cache.Counters) *MemoryTracker {
	if counters == nil {
		counters = cache.NewCounters()
	}
	return &MemoryTracker{counters: counters}
}

func (t *MemoryTracker) Used(_ context.Context, providerID string, day time.Time) (int, error) {
	return int(t.counters.Value(keypool.QuotaKey(providerID, day))), nil
}

func (t *MemoryTracker) Increment(_ context.Context, providerID string, day time.Time) (int, error) {
	t.counters.Sweep()
	used := t.counters.Add(keypool.QuotaKey(providerID, day), 1, keypool.NextMidnight(day))
	return int(used), nil
}

func (t *MemoryTracker) Exhaust(_ context.Context, providerID string, day time.Time, limit int) error {
	if limit <= 0 {
		return nil
	}
	t.counters.Put(keypool.QuotaKey(providerID, day), int64(limit), keypool.NextMidnight(day))
	return nil
}
