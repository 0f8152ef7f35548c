// Package scorecache memoizes match results per (performance, profile version).
package scorecache

import (
	"sync"
	"sync/atomic"

	"github.com/okian/gigmatch/internal/domain/model"
)

const defaultMaxSize = 10000

// Cache stores match results by key.
type Cache interface {
	// Get returns a copy of the cached result for key.
	Get(key string) (model.MatchResult, bool)
	// Put stores a result, evicting the oldest entry when full.
	Put(key string, r model.MatchResult)
	Size() int64
}

// node is an entry of the insertion-ordered list.
type node struct {
	key    string
	result model.MatchResult
	next   *node
}

func (n *node) reset() {
	n.key = ""
	n.result = model.MatchResult{}
	n.next = nil
}

// inMemoryCache keeps results in a map plus a singly linked list in insertion
// order (head oldest, tail newest) for FIFO eviction. With maxSize <= 0 it
// keeps everything in the map and never evicts.
type inMemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*node
	head     *node
	tail     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryCache creates a new in-memory cache with configuration options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[string]*node)
	c.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return c
}

func (c *inMemoryCache) Get(key string) (model.MatchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.entries[key]
	if !ok {
		return model.MatchResult{}, false
	}
	return n.result.Clone(), true
}

func (c *inMemoryCache) Put(key string, r model.MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.result = r.Clone()
		return
	}
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.result = r.Clone()
	if c.tail == nil {
		c.head = n
	} else {
		c.tail.next = n
	}
	c.tail = n
	c.entries[key] = n
	c.size.Add(1)
}

// evictOldest drops the head of the list. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	n := c.head
	if n == nil {
		return
	}
	c.head = n.next
	if c.head == nil {
		c.tail = nil
	}
	delete(c.entries, n.key)
	n.reset()
	c.nodePool.Put(n)
	c.size.Add(-1)
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
