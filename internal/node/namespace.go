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
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/smpio/kubefs/internal/cfg"
	"github.com/smpio/kubefs/internal/discovery"
	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/prune"
	"github.com/smpio/kubefs/internal/ttlcache"
)

// Namespace is a directory of ResourceGroup (and, when the config flags
// dictate, hoisted Kind) children. A nil Object represents the synthetic
// cluster-scoped view named GlobalPseudoNamespace.
type Namespace struct {
	unsupportedFile

	Object *unstructured.Unstructured

	engine *discovery.Engine
	client *kubeclient.Client
	cfg    cfg.Config

	cache *ttlcache.Cache[string, []Node]
}

// NewNamespace builds a Namespace node. obj is nil for the cluster-scoped
// pseudo-namespace.
func NewNamespace(obj *unstructured.Unstructured, engine *discovery.Engine, client *kubeclient.Client, c cfg.Config) *Namespace {
	return &Namespace{
		Object: obj,
		engine: engine,
		client: client,
		cfg:    c,
		cache:  ttlcache.New[string, []Node](c.CacheTTL(), c.CacheTTL()),
	}
}

func (n *Namespace) Name() string {
	if n.Object == nil {
		return GlobalPseudoNamespace
	}
	return n.Object.GetName()
}

func (*Namespace) IsDir() bool { return true }

func (n *Namespace) Stat() StatOverlay {
	if n.Object == nil {
		return StatOverlay{}
	}

	ts := n.Object.GetCreationTimestamp()
	if ts.IsZero() {
		return StatOverlay{}
	}

	sec := ts.Unix()
	return StatOverlay{Ctime: int64p(sec), Mtime: int64p(sec)}
}

func (n *Namespace) Children(ctx context.Context) ([]Node, error) {
	return n.cache.GetOrLoad("children", "children", func() ([]Node, error) {
		return n.buildChildren(ctx)
	})
}

func (n *Namespace) nsName() string {
	if n.Object == nil {
		return ""
	}
	return n.Object.GetName()
}

func (n *Namespace) buildChildren(ctx context.Context) ([]Node, error) {
	var tables discovery.Tables
	if n.Object != nil {
		tables = n.engine.Namespaced
	} else {
		tables = n.engine.Global
	}

	groups := make([]string, 0, len(tables))
	for g := range tables {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var resourceGroups []Node
	var hoisted []Node

	for _, group := range groups {
		kinds := tables[group]

		if n.cfg.ExpandUndottedResourceGroup && !isDottedGroup(group) {
			for _, desc := range sortedDescriptors(kinds) {
				hoisted = append(hoisted, NewKind(desc, n.nsNamespace(), n.client, n.cfg))
			}
			continue
		}

		if group == "" && n.cfg.ExpandCoreResourceGroup {
			for _, desc := range sortedDescriptors(kinds) {
				hoisted = append(hoisted, NewKind(desc, n.nsNamespace(), n.client, n.cfg))
			}
			continue
		}

		resourceGroups = append(resourceGroups, NewResourceGroup(groupDisplayName(group, n.cfg), kinds, n.nsNamespace(), n.client, n.cfg))
	}

	if n.cfg.ExcludeEmptyResourceGroups && len(resourceGroups) > 0 {
		filtered, err := prune.FilterNonEmpty(ctx, resourceGroups, 0, func(ctx context.Context, candidate Node) (bool, error) {
			children, err := candidate.Children(ctx)
			if err != nil {
				return false, err
			}
			return len(children) > 0, nil
		})
		if err != nil {
			return nil, fmt.Errorf("pruning empty resource groups: %w", err)
		}
		resourceGroups = filtered
	}

	if n.cfg.ExcludeEmptyKinds && len(hoisted) > 0 {
		filtered, err := prune.FilterNonEmpty(ctx, hoisted, n.cfg.MaxParallelRequests, func(ctx context.Context, candidate Node) (bool, error) {
			children, err := candidate.Children(ctx)
			if err != nil {
				return false, err
			}
			return len(children) > 0, nil
		})
		if err != nil {
			return nil, fmt.Errorf("pruning empty kinds: %w", err)
		}
		hoisted = filtered
	}

	out := make([]Node, 0, len(resourceGroups)+len(hoisted))
	out = append(out, resourceGroups...)
	out = append(out, hoisted...)
	return out, nil
}

// nsNamespace returns the namespace name to scope API calls to, or "" for
// the cluster-scoped view.
func (n *Namespace) nsNamespace() string {
	return n.nsName()
}

func isDottedGroup(group string) bool {
	for _, r := range group {
		if r == '.' {
			return true
		}
	}
	return false
}

// groupDisplayName applies PREFIX_RESOURCE_GROUPS: the core group becomes
// CoreResourceGroupName, other groups are left bare unless either expand
// flag is set, in which case they are prefixed with "_" to avoid colliding
// with a hoisted kind of the same name.
func groupDisplayName(group string, c cfg.Config) string {
	if group == "" {
		return CoreResourceGroupName
	}
	if c.PrefixResourceGroups() {
		return "_" + group
	}
	return group
}

func sortedDescriptors(kinds map[string]discovery.ResourceDescriptor) []discovery.ResourceDescriptor {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]discovery.ResourceDescriptor, 0, len(names))
	for _, k := range names {
		out = append(out, kinds[k])
	}
	return out
}
