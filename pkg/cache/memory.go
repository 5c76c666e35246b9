package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

// WithDefaultTTL sets the TTL applied when Set is called with zero.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often expired entries are swept. Zero
// disables the sweeper; expired entries are then dropped on access.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries bounds the cache size, evicting the least recently used
// entry on overflow. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}

type entry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a process-local cache with TTL expiry and optional LRU
// eviction. The front of the list holds the most recently used entry.
type Memory[V any] struct {
	items   map[string]*list.Element
	lru     *list.List
	opts    memoryOptions
	onEvict func(key string, value V)
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates an in-memory cache. Call Close to stop the sweeper.
//
//	c := cache.NewMemory[*routecache.Manifest](cache.WithMaxEntries(16))
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{defaultTTL: time.Hour, cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.sweep()
	}
	return m
}

// SetEvictCallback registers fn to be called for every entry leaving the
// cache, whether evicted, expired, deleted or cleared.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Get returns the value for key and marks it as recently used.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem := m.live(key)
	if elem == nil {
		var zero V
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(elem)
	return elem.Value.(*entry[V]).value, nil
}

// Set stores value under key.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.lru.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Has reports whether key holds a live entry without touching its recency.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(key) != nil, nil
}

// Clear removes every entry.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.onEvict != nil {
		for _, elem := range m.items {
			e := elem.Value.(*entry[V])
			m.onEvict(e.key, e.value)
		}
	}
	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Close stops the sweeper. Further writes fail with ErrClosed. Close is
// idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// live returns the element for key, dropping it if it has expired.
// Caller must hold the mutex.
func (m *Memory[V]) live(key string) *list.Element {
	elem, ok := m.items[key]
	if !ok {
		return nil
	}
	if elem.Value.(*entry[V]).expired(time.Now()) {
		m.remove(elem)
		return nil
	}
	return elem
}

func (m *Memory[V]) sweep() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for elem := m.lru.Back(); elem != nil; {
				prev := elem.Prev()
				if elem.Value.(*entry[V]).expired(now) {
					m.remove(elem)
				}
				elem = prev
			}
			m.mu.Unlock()
		}
	}
}

// remove unlinks elem and fires the eviction callback.
// Caller must hold the mutex.
func (m *Memory[V]) remove(elem *list.Element) {
	m.lru.Remove(elem)
	e := elem.Value.(*entry[V])
	delete(m.items, e.key)
	if m.onEvict != nil {
		m.onEvict(e.key, e.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
