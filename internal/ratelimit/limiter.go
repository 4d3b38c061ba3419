package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Decision is the outcome of one attempt against a limit
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts attempts per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// Noop never limits. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func (Noop) Reset(context.Context, string) error {
	return nil
}

var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// Redis is a fixed-window limiter shared by every API instance
type Redis struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedis creates a limiter allowing limit attempts per key per window
func NewRedis(client redis.Cmdable, prefix string, limit int, window time.Duration) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if window < time.Millisecond {
		return nil, fmt.Errorf("window must be at least 1ms, got %s", window)
	}
	return &Redis{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}, nil
}

// Allow records an attempt for key and reports whether it is within the limit
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	result, err := allowScript.Run(ctx, r.client, []string{r.prefix + key}, r.window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return Decision{}, errors.New("unexpected redis rate limit response")
	}
	current, ok := values[0].(int64)
	if !ok {
		return Decision{}, errors.New("invalid redis counter response")
	}
	ttlMillis, _ := values[1].(int64)

	resetAt := r.now()
	if ttlMillis > 0 {
		resetAt = resetAt.Add(time.Duration(ttlMillis) * time.Millisecond)
	}
	remaining := r.limit - int(current)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   current <= int64(r.limit),
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for key, e.g. after a successful login
func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}
