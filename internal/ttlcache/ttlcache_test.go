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

package ttlcache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests model the cache the way internal/node actually uses it: a
// single "body"/"children" key per node caching the last-fetched YAML
// manifest or child listing for that node's TTL.

func TestCache_SetAndGet(t *testing.T) {
	cache := New[string, []byte](100*time.Millisecond, 10*time.Millisecond)
	defer cache.Stop()

	cache.Set("body", []byte("kind: Pod\n"))
	val, found := cache.Get("body")

	assert.True(t, found)
	assert.Equal(t, []byte("kind: Pod\n"), val)
}

func TestCache_GetExpired(t *testing.T) {
	ttl := 50 * time.Millisecond
	cache := New[string, int](ttl, 10*time.Millisecond)
	defer cache.Stop()

	cache.Set("childCount", 3)
	time.Sleep(ttl + 10*time.Millisecond)

	val, found := cache.Get("childCount")

	assert.False(t, found)
	assert.Equal(t, 0, val)
}

func TestCache_GetNonExistent(t *testing.T) {
	cache := New[string, []byte](time.Minute, time.Second)
	defer cache.Stop()

	val, found := cache.Get("body")

	assert.False(t, found)
	assert.Nil(t, val)
}

func TestCache_SetOverrides(t *testing.T) {
	cache := New[string, []byte](time.Minute, time.Second)
	defer cache.Stop()

	cache.Set("body", []byte("kind: Pod\n"))
	cache.Set("body", []byte("kind: Deployment\n"))

	val, found := cache.Get("body")

	assert.True(t, found)
	assert.Equal(t, []byte("kind: Deployment\n"), val)
}

func TestCache_Delete(t *testing.T) {
	cache := New[string, []byte](time.Minute, time.Second)
	defer cache.Stop()

	cache.Set("body", []byte("kind: Pod\n"))
	cache.Delete("body")

	_, found := cache.Get("body")
	assert.False(t, found, "Delete is how Object invalidates its cached body after a write")
}

func TestCache_Cleanup(t *testing.T) {
	ttl := 50 * time.Millisecond
	cleanupInterval := 10 * time.Millisecond
	cache := New[string, []byte](ttl, cleanupInterval)
	defer cache.Stop()

	cache.Set("body", []byte("kind: Pod\n"))

	time.Sleep(ttl + cleanupInterval*3)

	cache.mu.RLock()
	_, foundInMap := cache.items["body"]
	cache.mu.RUnlock()

	assert.False(t, foundInMap, "expired entry should be removed by the background sweep, not just hidden on Get")
}

func TestCache_GetOrLoad_SingleFlight(t *testing.T) {
	cache := New[string, []byte](time.Minute, time.Second)
	defer cache.Stop()

	var fetches int32
	var wg sync.WaitGroup
	results := make([][]byte, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := cache.GetOrLoad("body", "body", func() ([]byte, error) {
				atomic.AddInt32(&fetches, 1)
				time.Sleep(20 * time.Millisecond)
				return []byte("kind: Pod\n"), nil
			})
			assert.NoError(t, err)
			results[idx] = v
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "concurrent misses on the same key should collapse into one GET against the cluster")
	for _, v := range results {
		assert.Equal(t, []byte("kind: Pod\n"), v)
	}
}

func TestCache_GetOrLoad_PropagatesLoadError(t *testing.T) {
	cache := New[string, []byte](time.Minute, time.Second)
	defer cache.Stop()

	wantErr := errors.New("object not found")
	_, err := cache.GetOrLoad("body", "body", func() ([]byte, error) {
		return nil, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	_, found := cache.Get("body")
	assert.False(t, found, "a failed load must not poison the cache with a zero value")
}

func TestCache_Concurrency(t *testing.T) {
	cache := New[string, int](100*time.Millisecond, 20*time.Millisecond)
	defer cache.Stop()

	var wg sync.WaitGroup
	const namespaces = 25
	const kindsPerNamespace = 10

	for ns := 0; ns < namespaces; ns++ {
		wg.Add(1)
		go func(ns int) {
			defer wg.Done()
			for kind := 0; kind < kindsPerNamespace; kind++ {
				key := fmt.Sprintf("ns%d/kind%d", ns, kind)
				cache.Set(key, ns*kindsPerNamespace+kind)
				_, _ = cache.Get(key)
			}
		}(ns)
	}

	wg.Wait()

	val, found := cache.Get("ns12/kind5")
	assert.True(t, found)
	assert.Equal(t, 12*kindsPerNamespace+5, val)
}

func TestCache_Stop_IsIdempotent(t *testing.T) {
	cache := New[string, []byte](time.Minute, 10*time.Millisecond)

	assert.NotPanics(t, func() {
		cache.Stop()
		cache.Stop()
	})
}

func TestCache_StopHaltsBackgroundSweep(t *testing.T) {
	ttl := 20 * time.Millisecond
	cache := New[string, []byte](ttl, 5*time.Millisecond)

	cache.Set("body", []byte("kind: Pod\n"))
	cache.Stop()

	time.Sleep(ttl * 3)

	// The sweep goroutine is gone, but Get's own expiry check still hides
	// the now-stale entry rather than serving it past its TTL.
	_, found := cache.Get("body")
	assert.False(t, found)

	cache.mu.RLock()
	_, stillInMap := cache.items["body"]
	cache.mu.RUnlock()
	require.True(t, stillInMap, "with the sweep stopped, the expired entry is never actively evicted")
}
