package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisLocker serializes bulk image saves per product across service
// instances. A lock is a Redis key set with NX and a TTL; the TTL bounds how
// long a crashed holder can block other writers.
type RedisLocker struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisLocker(redisClient *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Acquire takes the lock for key. It does not block: a held lock yields
// ok=false so the caller can reject with a retryable conflict instead of
// queueing. The returned release func deletes the lock only if this caller
// still owns it.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	redisKey := fmt.Sprintf("lock:product:%s", key)
	token := uuid.New().String()

	ok, err := l.redis.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("lock acquire failed: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	// Lua script so the check-and-delete is atomic; a lock that expired and
	// was re-acquired by another holder must not be deleted here.
	releaseScript := `
		if redis.call('GET', KEYS[1]) == ARGV[1] then
			return redis.call('DEL', KEYS[1])
		end
		return 0
	`

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.redis.Eval(releaseCtx, releaseScript, []string{redisKey}, token)
	}

	return release, true, nil
}
