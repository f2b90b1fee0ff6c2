// Package cache memoizes completed analyses so repeated submissions of
// the same text never hit a provider twice within the TTL window.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/buergerwerk/klartext/internal/model"
)

// Key derives the content address for one analysis: a hash over the
// normalized input text and the model/prompt version, so a prompt
// change invalidates old entries naturally.
func Key(text, modelVersion string) string {
	hash := sha256.Sum256([]byte(text + "\x00" + modelVersion))
	return "klartext:v1:" + hex.EncodeToString(hash[:])
}

type entry struct {
	value     *model.AnalysisResult
	expiresAt time.Time
}

// ResponseCache is a bounded, TTL-backed store of analysis results.
// Eviction is oldest-inserted-first (not LRU); the size-cap check and
// the insert are atomic under one mutex.
type ResponseCache struct {
	store *gocache.Cache
	ttl   time.Duration
	max   int

	mu    sync.Mutex
	order []string // insertion order, oldest first

	now func() time.Time
}

// New creates a response cache with the given TTL and entry cap.
func New(ttl time.Duration, maxEntries int) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	return &ResponseCache{
		store: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
		max:   maxEntries,
		now:   time.Now,
	}
}

// Get returns the cached result for key, or a miss if the key is
// unknown or its TTL has elapsed. An expired entry is purged on read.
func (c *ResponseCache) Get(key string) (*model.AnalysisResult, bool) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	e := v.(entry)
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		c.store.Delete(key)
		c.dropKey(key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Put stores a result under key, evicting the oldest inserted entry if
// the cap is exceeded.
func (c *ResponseCache) Put(key string, value *model.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store.Get(key); !exists {
		for len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			c.store.Delete(oldest)
		}
		c.order = append(c.order, key)
	}

	c.store.Set(key, entry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}, c.ttl)
}

// Len returns the number of live entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// dropKey removes key from the insertion order. Caller holds mu.
func (c *ResponseCache) dropKey(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
