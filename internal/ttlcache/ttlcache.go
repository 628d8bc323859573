// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ttlcache is a generic time-bounded memoizing cache with
// single-flight semantics on miss: concurrent callers asking for the same
// key while a fetch is in flight block on that one fetch rather than each
// issuing their own.
package ttlcache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache memoizes values of type V keyed by K for a fixed TTL, with a
// background goroutine that periodically evicts expired entries.
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	group singleflight.Group

	mu    sync.RWMutex
	items map[K]entry[V]

	stop chan struct{}
	once sync.Once
}

// New creates a Cache whose entries live for ttl and are swept for expiry
// every cleanupInterval. A non-positive cleanupInterval starts no sweep;
// expired entries are then only hidden by Get. A non-positive ttl makes
// every entry expire at once, which disables caching.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
		stop:  make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}

	return c
}

func (c *Cache[K, V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.items {
				if now.After(e.expires) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Stop tears down the cleanup goroutine. Safe to call more than once.
func (c *Cache[K, V]) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expires) {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores value for key, resetting its TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes key from the cache, if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key if fresh, otherwise calls load
// to fetch it and caches the result. Concurrent callers that miss on the
// same key share a single call to load.
func (c *Cache[K, V]) GetOrLoad(key K, keyStr string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(keyStr, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		v, err := load()
		if err != nil {
			return v, err
		}

		c.Set(key, v)
		return v, nil
	})

	if err != nil {
		var zero V
		return zero, err
	}

	return v.(V), nil
}
