package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores encoded values under a key prefix.
type Redis[V any] struct {
	client     redis.UniversalClient
	codec      Codec[V]
	prefix     string
	defaultTTL time.Duration
}

// NewRedis returns a Redis cache. Keys are stored as "{prefix}:{key}".
// A nil codec selects JSON. A trailing ":" on prefix is dropped.
func NewRedis[V any](client redis.UniversalClient, prefix string, defaultTTL time.Duration, codec Codec[V]) *Redis[V] {
	if codec == nil {
		codec = JSON[V]{}
	}
	return &Redis[V]{client: client, codec: codec, prefix: strings.TrimRight(prefix, ":"), defaultTTL: defaultTTL}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// DeletePrefix removes every key under "{prefix}:{sub}" using SCAN.
func (r *Redis[V]) DeletePrefix(ctx context.Context, sub string) error {
	return r.scanDelete(ctx, r.key(sub)+"*")
}

// Clear removes every key under the cache prefix.
func (r *Redis[V]) Clear(ctx context.Context) error {
	return r.scanDelete(ctx, r.prefix+":*")
}

// Close is a no-op; the client is owned by the caller.
func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(k string) string {
	return r.prefix + ":" + k
}

func (r *Redis[V]) scanDelete(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

var _ Cache[int] = (*Redis[int])(nil)
