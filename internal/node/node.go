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

// Package node is the tagged tree of virtual filesystem nodes: Root,
// Namespace, ResourceGroup, Kind, Object, and EmptyFile. Each variant is its
// own type implementing the shared Node interface, dispatched on concrete
// type rather than on a class hierarchy.
package node

import "context"

// GlobalPseudoNamespace is the synthetic namespace name used for the
// cluster-scoped view.
const GlobalPseudoNamespace = "_"

// CoreResourceGroupName is the name given to the empty (core) API group
// when it is surfaced as its own directory rather than hoisted.
const CoreResourceGroupName = "_"

// StatOverlay carries the subset of stat fields a node wants to override;
// zero value overlays nothing. The adapter fills in mode/nlink defaults and
// any field left unset here.
type StatOverlay struct {
	Size    *int64
	Ctime   *int64
	Mtime   *int64
}

// Node is implemented by every member of the virtual tree. Directories
// implement Children; files implement Read. Calling the wrong one panics,
// matching the source's NotImplementedError contract - callers must check
// IsDir first.
type Node interface {
	Name() string
	IsDir() bool
	Children(ctx context.Context) ([]Node, error)
	Read(ctx context.Context) ([]byte, error)
	Stat() StatOverlay
}

// unsupportedDir and unsupportedFile are embedded by leaf/directory-only variants so they don't each
// repeat the panic bodies for the operation they don't support.
type unsupportedDir struct{}

func (unsupportedDir) Children(ctx context.Context) ([]Node, error) {
	panic("node: Children called on a non-directory node")
}

type unsupportedFile struct{}

func (unsupportedFile) Read(ctx context.Context) ([]byte, error) {
	panic("node: Read called on a directory node")
}

func int64p(v int64) *int64 { return &v }
