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

package prune

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterNonEmpty_PreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	kept, err := FilterNonEmpty(context.Background(), items, 0, func(_ context.Context, n int) (bool, error) {
		return n%2 == 0, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, kept)
}

func TestFilterNonEmpty_EmptyInput(t *testing.T) {
	kept, err := FilterNonEmpty(context.Background(), []int{}, 0, func(_ context.Context, n int) (bool, error) {
		t.Fatal("hasChildren should not be called for an empty input")
		return false, nil
	})

	require.NoError(t, err)
	assert.Empty(t, kept)
}

func TestFilterNonEmpty_PropagatesError(t *testing.T) {
	boom := errors.New("boom")

	_, err := FilterNonEmpty(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, n int) (bool, error) {
		if n == 2 {
			return false, boom
		}
		return true, nil
	})

	assert.ErrorIs(t, err, boom)
}

func TestFilterNonEmpty_RespectsConcurrencyCap(t *testing.T) {
	const concurrency = 2
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight int64

	_, err := FilterNonEmpty(context.Background(), items, concurrency, func(_ context.Context, n int) (bool, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		defer atomic.AddInt64(&inFlight, -1)

		for {
			observed := atomic.LoadInt64(&maxInFlight)
			if cur <= observed || atomic.CompareAndSwapInt64(&maxInFlight, observed, cur) {
				break
			}
		}
		return true, nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(concurrency))
}
