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

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/smpio/kubefs/internal/cfg"
	"github.com/smpio/kubefs/internal/discovery"
	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/ttlcache"
)

// Writable is implemented by nodes that accept a write-back of their full
// body. Object is the only variant that does; EmptyFile and every
// directory variant are read-only.
type Writable interface {
	Write(ctx context.Context, data []byte) error
}

// Object is a single cluster resource, surfaced as a YAML file named
// "<metadata.name>.yaml".
type Object struct {
	unsupportedDir

	item       unstructured.Unstructured
	descriptor discovery.ResourceDescriptor

	client *kubeclient.Client
	cfg    cfg.Config

	cache *ttlcache.Cache[string, []byte]
}

// NewObject builds an Object node wrapping a listing-time snapshot of item.
// The snapshot only supplies the name, namespace, and creation timestamp
// used for directory entries and stat overlay; Read fetches the YAML body
// from the server and caches it for the configured TTL.
func NewObject(item unstructured.Unstructured, descriptor discovery.ResourceDescriptor, client *kubeclient.Client, c cfg.Config) *Object {
	return &Object{
		item:       item,
		descriptor: descriptor,
		client:     client,
		cfg:        c,
		cache:      ttlcache.New[string, []byte](c.CacheTTL(), c.CacheTTL()),
	}
}

func (o *Object) Name() string { return o.item.GetName() + ".yaml" }

func (*Object) IsDir() bool { return false }

func (o *Object) Read(ctx context.Context) ([]byte, error) {
	return o.cache.GetOrLoad("body", "body", func() ([]byte, error) {
		body, _, err := o.client.GetObject(ctx, o.descriptor, o.item.GetNamespace(), o.item.GetName(), kubeclient.AcceptYAML)
		if err != nil {
			return nil, fmt.Errorf("fetching %s/%s: %w", o.descriptor.Kind, o.item.GetName(), err)
		}
		return body, nil
	})
}

// Write PUTs the full replacement body back to the object's URL and
// invalidates the cached read so the next Read reflects the server's
// canonicalized form.
func (o *Object) Write(ctx context.Context, data []byte) error {
	url := o.client.URLFor(o.descriptor, o.item.GetNamespace(), o.item.GetName())
	if err := o.client.Put(ctx, url, data, kubeclient.AcceptYAML); err != nil {
		return fmt.Errorf("updating %s/%s: %w", o.descriptor.Kind, o.item.GetName(), err)
	}
	o.cache.Delete("body")
	return nil
}

func (o *Object) Stat() StatOverlay {
	overlay := StatOverlay{}

	if body, err := o.Read(context.Background()); err == nil {
		overlay.Size = int64p(int64(len(body)))
	}

	ts := o.item.GetCreationTimestamp()
	if !ts.IsZero() {
		sec := ts.Unix()
		overlay.Ctime = int64p(sec)
		overlay.Mtime = int64p(sec)
	}

	return overlay
}
