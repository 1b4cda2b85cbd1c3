package cache_utils

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Limit caps requests per identifier inside a fixed window.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimiter counts requests in fixed windows. Each (scope, identifier,
// window-bucket) triple maps to one counter key whose TTL doubles as
// eviction, so a burst never leaves keys behind.
type RateLimiter struct {
	client valkey.Client
}

func NewRateLimiter(client valkey.Client) *RateLimiter {
	return &RateLimiter{
		client: client,
	}
}

// Allow records one request and reports whether the current window still
// has room. The counter includes the request being recorded, so the first
// call in a fresh window always passes.
func (r *RateLimiter) Allow(identifier, scope string, limit Limit) (bool, error) {
	windowSeconds := int64(limit.Window.Seconds())
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	bucket := time.Now().UTC().Unix() / windowSeconds
	key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, identifier, bucket)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultCacheTimeout)
	defer cancel()

	incrCmd := r.client.B().Incr().Key(key).Build()
	count, err := r.client.Do(ctx, incrCmd).AsInt64()
	if err != nil {
		return true, fmt.Errorf("failed to count rate limit window: %w", err)
	}

	if count == 1 {
		// Two windows of TTL keeps the key alive across the bucket edge.
		expireCmd := r.client.B().Expire().Key(key).Seconds(windowSeconds * 2).Build()
		if err := r.client.Do(ctx, expireCmd).Error(); err != nil {
			return true, fmt.Errorf("failed to expire rate limit window: %w", err)
		}
	}

	return count <= int64(limit.MaxRequests), nil
}
