package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		require.NoError(t, c.Set(ctx, "city:hyderabad", "Hyderabad", 0))

		v, err := c.Get(ctx, "city:hyderabad")
		require.NoError(t, err)
		assert.Equal(t, "Hyderabad", v)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		_, err := c.Get(ctx, "nope")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("expires", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		c := cache.NewMemory[int](cache.WithClock(clock.Now), cache.WithDefaultTTL(time.Minute))

		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, -1))

		clock.Advance(2 * time.Minute)

		_, err := c.Get(ctx, "a")
		require.ErrorIs(t, err, cache.ErrNotFound)

		v, err := c.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int](cache.WithMaxEntries(2))

		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		_, _ = c.Get(ctx, "a")
		require.NoError(t, c.Set(ctx, "c", 3, 0))

		_, err := c.Get(ctx, "b")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("delete prefix", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int]()
		require.NoError(t, c.Set(ctx, "list:priest", 1, 0))
		require.NoError(t, c.Set(ctx, "list:caterer", 2, 0))
		require.NoError(t, c.Set(ctx, "slug:ravi", 3, 0))

		require.NoError(t, c.DeletePrefix(ctx, "list:"))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int]()
		require.NoError(t, c.Close())
		require.ErrorIs(t, c.Set(ctx, "a", 1, 0), cache.ErrClosed)
		_, err := c.Get(ctx, "a")
		require.ErrorIs(t, err, cache.ErrClosed)
	})
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("loads once and caches", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[[]string]()
		var calls atomic.Int32
		load := func(context.Context) ([]string, time.Duration, error) {
			calls.Add(1)
			return []string{"priest"}, time.Minute, nil
		}

		for range 3 {
			v, err := cache.GetOrSet(ctx, c, "categories", load)
			require.NoError(t, err)
			assert.Equal(t, []string{"priest"}, v)
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("propagates load error", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int]()
		boom := errors.New("db down")

		_, err := cache.GetOrSet(ctx, c, "k", func(context.Context) (int, time.Duration, error) {
			return 0, 0, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Zero(t, c.Len())
	})

	t.Run("collapses concurrent misses", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int]()
		var calls atomic.Int32
		release := make(chan struct{})

		load := func(context.Context) (int, time.Duration, error) {
			calls.Add(1)
			<-release
			return 42, 0, nil
		}

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(ctx, c, "slow", load)
				assert.NoError(t, err)
				assert.Equal(t, 42, v)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.LessOrEqual(t, calls.Load(), int32(8))
		assert.GreaterOrEqual(t, calls.Load(), int32(1))
	})
}

func TestJSONCodec(t *testing.T) {
	t.Parallel()

	codec := cache.JSON[map[string]int]{}
	_, err := codec.Unmarshal([]byte("{not json"))
	require.ErrorIs(t, err, cache.ErrUnmarshal)

	_, err = cache.JSON[chan int]{}.Marshal(make(chan int))
	require.ErrorIs(t, err, cache.ErrMarshal)
}
