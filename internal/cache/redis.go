package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SequenceKeyFmt is the Redis key holding the last issued sequence of a numbering scope.
const SequenceKeyFmt = "docseq:%s"

// seedScript raises a counter to ARGV[1] without ever lowering it.
var seedScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if floor > current then
	redis.call("SET", KEYS[1], floor)
	return floor
end
return current
`)

// RedisCounter numbers documents across processes that share a Redis instance but not a record
// store transaction. INCR is atomic, so no two callers see the same value for a scope.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(ctx context.Context, addr, password string) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisCounter{client: client}, nil
}

func (c *RedisCounter) NextSequence(ctx context.Context, scope string) (int64, error) {
	seq, err := c.client.Incr(ctx, fmt.Sprintf(SequenceKeyFmt, scope)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", scope, err)
	}
	return seq, nil
}

// Seed makes sure the next value handed out for scope is above last.
func (c *RedisCounter) Seed(ctx context.Context, scope string, last int64) error {
	key := fmt.Sprintf(SequenceKeyFmt, scope)
	if err := seedScript.Run(ctx, c.client, []string{key}, last).Err(); err != nil {
		return fmt.Errorf("failed to seed sequence %s: %w", scope, err)
	}
	return nil
}

// Reset drops the counter for scope.
func (c *RedisCounter) Reset(ctx context.Context, scope string) error {
	return c.client.Del(ctx, fmt.Sprintf(SequenceKeyFmt, scope)).Err()
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}
