package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
)

type counter struct {
	count   int64
	expires time.Time
}

// RistrettoAdapter implements the CounterStore interface in process.
// Counts are per instance; use RedisAdapter when running more than one replica.
type RistrettoAdapter struct {
	mu    sync.Mutex
	cache *ristretto.Cache[string, counter]
	now   func() time.Time
}

// NewRistrettoAdapter creates an in-process counter store holding up to maxKeys counters
func NewRistrettoAdapter(maxKeys int64) (*RistrettoAdapter, error) {
	if maxKeys <= 0 {
		maxKeys = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, counter]{
		NumCounters:        maxKeys * 10,
		MaxCost:            maxKeys,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &RistrettoAdapter{cache: c, now: time.Now}, nil
}

var _ providers.CounterStore = (*RistrettoAdapter)(nil)

// Increment bumps the counter, starting a new window if the previous one expired
func (a *RistrettoAdapter) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	entry, ok := a.cache.Get(key)
	if !ok || !now.Before(entry.expires) {
		entry = counter{expires: now.Add(window)}
	}
	entry.count++

	a.cache.SetWithTTL(key, entry, 1, entry.expires.Sub(now))
	a.cache.Wait()
	return entry.count, nil
}

// Close releases the cache
func (a *RistrettoAdapter) Close() {
	a.cache.Close()
}
