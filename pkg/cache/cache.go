// Package cache provides typed key/value caches backed by memory or Redis.
//
// Both backends implement Cache[V]. A TTL of zero uses the backend default and
// a negative TTL stores the value without expiry. GetOrSet collapses
// concurrent misses for the same key into a single load.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrClosed    = errors.New("cache: closed")
	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)

// Cache is a typed cache.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Codec converts values to and from bytes for remote backends.
type Codec[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Codec.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var loads singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or calls load, stores its result
// and returns it. Concurrent callers missing the same key on the same cache
// share one load call. A failing Set does not fail the call.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, load func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := loads.Do(fmt.Sprintf("%p/%s", c, key), func() (any, error) {
		val, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, val, ttl)
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(loaded[V]).val, nil
}
