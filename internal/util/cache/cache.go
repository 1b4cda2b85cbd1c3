package cache_utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	DefaultCacheTimeout = 3 * time.Second
	DefaultEntryTTL     = 5 * time.Minute
)

// NewValkeyClient connects to Valkey. The client is constructed once at
// startup and injected into the components that need it.
func NewValkeyClient(host, port, username, password string) (valkey.Client, error) {
	return valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{host + ":" + port},
		Username:    username,
		Password:    password,
	})
}

// CacheUtil is a typed, prefix-scoped view over a shared Valkey client.
// Values are stored as JSON with a per-entry TTL.
type CacheUtil[T any] struct {
	client  valkey.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

func NewCacheUtil[T any](client valkey.Client, prefix string, ttl time.Duration) *CacheUtil[T] {
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}

	return &CacheUtil[T]{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: DefaultCacheTimeout,
	}
}

func (c *CacheUtil[T]) Get(key string) *T {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := c.client.B().Get().Key(c.prefix + key).Build()
	raw, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		return nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}

	return &value
}

func (c *CacheUtil[T]) Set(key string, value *T) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := c.client.B().
		Set().
		Key(c.prefix + key).
		Value(string(raw)).
		ExSeconds(int64(c.ttl.Seconds())).
		Build()
	c.client.Do(ctx, cmd)
}

func (c *CacheUtil[T]) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := c.client.B().Del().Key(c.prefix + key).Build()
	c.client.Do(ctx, cmd)
}
