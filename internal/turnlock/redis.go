package turnlock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if this holder still owns it.
// KEYS[1] = lock key
// ARGV[1] = holder token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tunes a Redis locker.
type RedisOptions struct {
	// Prefix is prepended to every key. Default "storepilot:turn:".
	Prefix string
	// TTL bounds how long a crashed holder can block others. Default 2m.
	TTL time.Duration
	// Poll is the wait between acquisition attempts. Default 100ms.
	Poll time.Duration
}

// RedisClient is the subset of the go-redis client the locker uses.
// *redis.Client and *redis.ClusterClient satisfy it.
type RedisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Redis is a Locker shared across processes through SET NX PX.
type Redis struct {
	client RedisClient
	opts   RedisOptions
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a locker over client.
func NewRedis(client RedisClient, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "storepilot:turn:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Minute
	}
	if opts.Poll <= 0 {
		opts.Poll = 100 * time.Millisecond
	}
	return &Redis{client: client, opts: opts}
}

// NewRedisFromAddr connects to a single Redis node.
func NewRedisFromAddr(addr, password string, db int, opts RedisOptions) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedis(rdb, opts)
}

// Acquire polls until the key is set by this holder or ctx is done.
func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	full := r.opts.Prefix + key
	token := uuid.NewString()
	for {
		ok, err := r.client.SetNX(ctx, full, token, r.opts.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("turnlock: acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.opts.Poll):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The turn's context may already be cancelled; release on a fresh one.
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, r.client, []string{full}, token).Err(); err != nil {
				slog.Warn("turn lock release failed", "key", key, "error", err)
			}
		})
	}, nil
}
