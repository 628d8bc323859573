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

package node

import (
	"context"
	"sync/atomic"
)

// Root is the filesystem's single directory node. Its child list is
// mutated only by the namespace watcher, via SetChildren's copy-on-write
// swap; readers always observe a complete pre- or post-swap snapshot, never
// a half-updated slice.
type Root struct {
	unsupportedFile

	children atomic.Pointer[[]Node]
}

// NewRoot builds a Root with the given initial children, stored as given.
// The namespace watcher's list step later replaces them with the
// cluster-scoped pseudo-namespace, the live namespaces, and the metadata
// sentinel file.
func NewRoot(initial []Node) *Root {
	r := &Root{}
	r.SetChildren(initial)
	return r
}

func (*Root) Name() string { return "/" }

func (*Root) IsDir() bool { return true }

func (*Root) Stat() StatOverlay { return StatOverlay{} }

// Children returns the current snapshot of Root's child list.
func (r *Root) Children(ctx context.Context) ([]Node, error) {
	return *r.children.Load(), nil
}

// SetChildren atomically replaces Root's child list. Used by the watcher on
// every ADDED/DELETED namespace event and at startup.
func (r *Root) SetChildren(children []Node) {
	snapshot := make([]Node, len(children))
	copy(snapshot, children)
	r.children.Store(&snapshot)
}
