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
	"github.com/smpio/kubefs/internal/ttlcache"
)

// Kind is a directory of Object children, one per live instance of a
// resource kind, fetched via a single LIST call.
type Kind struct {
	unsupportedFile

	Descriptor discovery.ResourceDescriptor
	Namespace  string

	client *kubeclient.Client
	cfg    cfg.Config

	cache *ttlcache.Cache[string, []Node]
}

// NewKind builds a Kind node for descriptor, scoped to namespace ("" for
// the cluster-scoped view).
func NewKind(descriptor discovery.ResourceDescriptor, namespace string, client *kubeclient.Client, c cfg.Config) *Kind {
	return &Kind{
		Descriptor: descriptor,
		Namespace:  namespace,
		client:     client,
		cfg:        c,
		cache:      ttlcache.New[string, []Node](c.CacheTTL(), c.CacheTTL()),
	}
}

func (k *Kind) Name() string { return k.Descriptor.Kind }

func (*Kind) IsDir() bool { return true }

func (*Kind) Stat() StatOverlay { return StatOverlay{} }

func (k *Kind) Children(ctx context.Context) ([]Node, error) {
	return k.cache.GetOrLoad("children", "children", func() ([]Node, error) {
		list, err := k.client.List(ctx, k.Descriptor, k.Namespace)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", k.Descriptor.Kind, err)
		}

		out := make([]Node, 0, len(list.Items))
		for i := range list.Items {
			out = append(out, NewObject(list.Items[i], k.Descriptor, k.client, k.cfg))
		}
		return out, nil
	})
}
