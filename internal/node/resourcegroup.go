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

	"github.com/smpio/kubefs/internal/cfg"
	"github.com/smpio/kubefs/internal/discovery"
	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/prune"
	"github.com/smpio/kubefs/internal/ttlcache"
)

// ResourceGroup is a directory holding one Kind child per resource the
// discovery engine placed in this API group.
type ResourceGroup struct {
	unsupportedFile

	name      string
	kinds     []discovery.ResourceDescriptor
	namespace string
	client    *kubeclient.Client
	cfg       cfg.Config

	cache *ttlcache.Cache[string, []Node]
}

// NewResourceGroup builds a ResourceGroup node named name over kinds,
// scoped to namespace ("" for the cluster-scoped view).
func NewResourceGroup(name string, kinds map[string]discovery.ResourceDescriptor, namespace string, client *kubeclient.Client, c cfg.Config) *ResourceGroup {
	return &ResourceGroup{
		name:      name,
		kinds:     sortedDescriptors(kinds),
		namespace: namespace,
		client:    client,
		cfg:       c,
		cache:     ttlcache.New[string, []Node](c.CacheTTL(), c.CacheTTL()),
	}
}

func (g *ResourceGroup) Name() string { return g.name }

func (*ResourceGroup) IsDir() bool { return true }

func (*ResourceGroup) Stat() StatOverlay { return StatOverlay{} }

func (g *ResourceGroup) Children(ctx context.Context) ([]Node, error) {
	return g.cache.GetOrLoad("children", "children", func() ([]Node, error) {
		return g.buildChildren(ctx)
	})
}

func (g *ResourceGroup) buildChildren(ctx context.Context) ([]Node, error) {
	kinds := make([]Node, 0, len(g.kinds))
	for _, desc := range g.kinds {
		kinds = append(kinds, NewKind(desc, g.namespace, g.client, g.cfg))
	}

	if !g.cfg.ExcludeEmptyKinds {
		return kinds, nil
	}

	filtered, err := prune.FilterNonEmpty(ctx, kinds, g.cfg.MaxParallelRequests, func(ctx context.Context, candidate Node) (bool, error) {
		children, err := candidate.Children(ctx)
		if err != nil {
			return false, err
		}
		return len(children) > 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pruning empty kinds in group %s: %w", g.name, err)
	}

	return filtered, nil
}
