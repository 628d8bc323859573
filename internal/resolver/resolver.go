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

// Package resolver walks a slash-separated path down the virtual tree
// starting at Root, returning the node it names or failing with one of the
// two sentinel errors below. It holds no state of its own; it reuses
// whatever caching the nodes it visits already provide.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/smpio/kubefs/internal/node"
)

// ErrNotFound is returned when a path segment has no matching child.
var ErrNotFound = errors.New("resolver: no such file or directory")

// ErrNotADirectory is returned when a path segment descends into a node
// that is not a directory.
var ErrNotADirectory = errors.New("resolver: not a directory")

// Resolve walks path, which must begin with "/", down the tree rooted at
// root. The empty path (just "/") resolves to root itself.
func Resolve(ctx context.Context, root node.Node, path string) (node.Node, error) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return root, nil
	}

	segments := strings.Split(trimmed, "/")

	current := root
	for _, segment := range segments {
		if !current.IsDir() {
			return nil, ErrNotADirectory
		}

		children, err := current.Children(ctx)
		if err != nil {
			return nil, err
		}

		next, ok := findChild(children, segment)
		if !ok {
			return nil, ErrNotFound
		}
		current = next
	}

	return current, nil
}

func findChild(children []node.Node, name string) (node.Node, bool) {
	for _, c := range children {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
