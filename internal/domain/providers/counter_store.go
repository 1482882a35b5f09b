package providers

import (
	"context"
	"time"
)

// CounterStore keeps expiring counters, used for per-client rate limiting.
type CounterStore interface {
	// Increment adds one to key and returns the new value. The window starts on the first increment.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
