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

// Package prune fans out "does this candidate have any children" checks
// across a bounded worker pool and drops the candidates that come back
// empty, preserving input order. It is generic over the candidate type so
// it carries no dependency on the node package it prunes on behalf of.
package prune

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// FilterNonEmpty runs hasChildren(item) for every item in items, at most
// concurrency at a time (concurrency <= 0 means unbounded, one goroutine per
// item), and returns the subset for which hasChildren reported true, in
// their original relative order. The first error aborts the remaining
// in-flight checks and is returned.
func FilterNonEmpty[T any](ctx context.Context, items []T, concurrency int, hasChildren func(context.Context, T) (bool, error)) ([]T, error) {
	keep := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)

	var sem *semaphore.Weighted
	if concurrency > 0 {
		sem = semaphore.NewWeighted(int64(concurrency))
	}

	for i, item := range items {
		i, item := i, item

		g.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
			}

			ok, err := hasChildren(gctx, item)
			if err != nil {
				return err
			}
			keep[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}

	return out, nil
}
