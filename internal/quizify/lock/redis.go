package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/quizify/pkg/cryptox"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultLockTTL  = 10 * time.Second
	DefaultLockWait = 5 * time.Second
	pollInterval    = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken over is never released by the old owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX PX, shared by every instance pointed at
// the same Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedis builds a Redis locker. ttl bounds how long a crashed holder can
// block a key; wait bounds how long Acquire polls. Zero values take defaults.
func NewRedis(client *redis.Client, ttl, wait time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &Redis{client: client, ttl: ttl, wait: wait}
}

func (l *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrTimeout, key)
		}
	}
}

func (l *Redis) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// Detached from the request so a cancelled request still frees the key.
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				slogx.FromContext(ctx).Warn("lock: release failed", "key", key, "err", err)
			}
		})
	}
}

// Ping checks the Redis connection.
func (l *Redis) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
