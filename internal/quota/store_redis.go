package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// resetAndIncrementScript increments the subject's counter and starts the
// window expiry on the first hit. Running as a single Lua script makes the
// reset-and-increment atomic with respect to concurrent callers.
var resetAndIncrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RedisStore implements Store on a Redis fixed-window counter.
// The window reset is the key expiry: once the TTL elapses the next INCR
// starts a fresh window at 1, matching the reset-to-one semantics.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a Redis-backed quota store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, keyPrefix: "quota:"}
}

// ResetAndIncrement atomically counts one action in the subject's window.
func (s *RedisStore) ResetAndIncrement(ctx context.Context, subjectID string, window time.Duration) (int64, time.Time, error) {
	key := s.keyPrefix + subjectID

	raw, err := resetAndIncrementScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("quota increment for %s: %w", subjectID, err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, time.Time{}, fmt.Errorf("quota increment for %s: unexpected script reply %T", subjectID, raw)
	}

	count, _ := values[0].(int64)
	ttlMillis, _ := values[1].(int64)

	resetAt := time.Now().UTC().Add(window)
	if ttlMillis > 0 {
		resetAt = time.Now().UTC().Add(time.Duration(ttlMillis) * time.Millisecond)
	}

	return count, resetAt, nil
}

// Compile-time check that RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
