package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process LRU cache with per-entry expiry.
type Memory[V any] struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time
	closed     bool
}

type memoryEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time
}

// WithDefaultTTL sets the TTL used when Set is called with ttl == 0.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.defaultTTL = d }
}

// WithMaxEntries caps the cache size; the least recently used entry is evicted.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) { c.maxEntries = n }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) { c.now = now }
}

// NewMemory returns an empty Memory cache.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{defaultTTL: 5 * time.Minute, maxEntries: 10_000, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Memory[V]{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		defaultTTL: cfg.defaultTTL,
		maxEntries: cfg.maxEntries,
		now:        cfg.now,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return zero, ErrClosed
	}
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	entry := el.Value.(*memoryEntry[V])
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.removeElement(el)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(el)
	return entry.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		entry := el.Value.(*memoryEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		m.order.MoveToFront(el)
		return nil
	}

	m.items[key] = m.order.PushFront(&memoryEntry[V]{key: key, value: value, expiresAt: expiresAt})
	for m.maxEntries > 0 && m.order.Len() > m.maxEntries {
		m.removeElement(m.order.Back())
	}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		m.removeElement(el)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (m *Memory[V]) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, el := range m.items {
		if strings.HasPrefix(key, prefix) {
			m.removeElement(el)
		}
	}
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = nil
	m.order.Init()
	return nil
}

// Len reports the number of stored entries, including expired ones not yet evicted.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory[V]) removeElement(el *list.Element) {
	entry := el.Value.(*memoryEntry[V])
	delete(m.items, entry.key)
	m.order.Remove(el)
}

var _ Cache[int] = (*Memory[int])(nil)
