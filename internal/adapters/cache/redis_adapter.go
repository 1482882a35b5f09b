package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/carenavigator/backend/internal/infrastructure/clients/redis"
)

// incrementScript bumps the counter and gives it a TTL whenever it has none,
// so a key left without expiry heals on its next hit.
var incrementScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisAdapter implements the CounterStore interface using Redis, so limits hold across replicas
type RedisAdapter struct {
	scripter redis.Scripter
	prefix   string
}

// NewRedisAdapter creates a new Redis counter adapter
func NewRedisAdapter(client *redisclient.Client, prefix string) providers.CounterStore {
	return newRedisAdapter(client.Client(), prefix)
}

func newRedisAdapter(scripter redis.Scripter, prefix string) *RedisAdapter {
	return &RedisAdapter{
		scripter: scripter,
		prefix:   prefix,
	}
}

// Increment bumps the counter and sets its expiry atomically in one script call
func (a *RedisAdapter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := incrementScript.Run(ctx, a.scripter, []string{a.prefix + key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return count, nil
}
