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

// Package discovery enumerates the cluster's preferred API surface and
// partitions it into namespaced and cluster-scoped resource tables. The
// tables are built once, at startup, and are immutable for the lifetime of
// the mount.
package discovery

import (
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"

	"github.com/smpio/kubefs/internal/logger"
)

// ResourceDescriptor is the frozen record of one kind's API surface,
// produced by discovery and never mutated afterward.
type ResourceDescriptor struct {
	Group       string // "" means the core group.
	APIVersion  string
	Kind        string
	PluralName  string
	Namespaced  bool
	Verbs       map[string]struct{}
}

// HasVerb reports whether the descriptor's resource supports verb.
func (d ResourceDescriptor) HasVerb(verb string) bool {
	_, ok := d.Verbs[verb]
	return ok
}

// Tables is a group -> (kind -> descriptor) mapping. One exists for
// namespaced resources and one for cluster-scoped resources.
type Tables map[string]map[string]ResourceDescriptor

// Engine holds the two frozen discovery tables for a cluster.
type Engine struct {
	Namespaced Tables
	Global     Tables
}

// Discover enumerates the server's preferred API groups and resources via
// client, keeping only resources that support both "get" and "list" and
// are not *List meta-kinds, and partitions the result into the namespaced
// and cluster-scoped tables.
func Discover(client discovery.DiscoveryInterface) (*Engine, error) {
	lists, err := client.ServerPreferredResources()
	if err != nil && lists == nil {
		return nil, fmt.Errorf("ServerPreferredResources: %w", err)
	}
	// A partial error (some groups failing) still yields usable results for
	// the groups that succeeded; only a nil result set is fatal.

	e := &Engine{
		Namespaced: make(Tables),
		Global:     make(Tables),
	}

	for _, list := range lists {
		gv, parseErr := parseGroupVersion(list.GroupVersion)
		if parseErr != nil {
			logger.Warnf("discovery: skipping unparsable group version %q: %v", list.GroupVersion, parseErr)
			continue
		}

		if len(list.APIResources) == 0 {
			logger.Warnf("discovery: no resources for group %q version %q", gv.group, gv.version)
			continue
		}

		for _, res := range list.APIResources {
			if strings.HasSuffix(res.Kind, "List") {
				continue
			}

			if !hasVerbs(res.Verbs, "get", "list") {
				continue
			}

			desc := ResourceDescriptor{
				Group:      gv.group,
				APIVersion: gv.version,
				Kind:       res.Kind,
				PluralName: res.Name,
				Namespaced: res.Namespaced,
				Verbs:      verbSet(res.Verbs),
			}

			table := e.Global
			if desc.Namespaced {
				table = e.Namespaced
			}

			groupKey := desc.Group
			if table[groupKey] == nil {
				table[groupKey] = make(map[string]ResourceDescriptor)
			}

			if _, exists := table[groupKey][desc.Kind]; exists {
				// Only the first (preferred) descriptor for a given (group, kind)
				// is retained, per spec.
				continue
			}

			table[groupKey][desc.Kind] = desc
		}
	}

	return e, nil
}

type groupVersion struct {
	group   string
	version string
}

// parseGroupVersion splits a discovery GroupVersion string ("v1" for the
// core group, "apps/v1" otherwise) into its group and version parts.
func parseGroupVersion(gv string) (groupVersion, error) {
	parts := strings.Split(gv, "/")
	switch len(parts) {
	case 1:
		return groupVersion{group: "", version: parts[0]}, nil
	case 2:
		return groupVersion{group: parts[0], version: parts[1]}, nil
	default:
		return groupVersion{}, fmt.Errorf("malformed group version %q", gv)
	}
}

func hasVerbs(have metav1.Verbs, want ...string) bool {
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}

	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}

	return true
}

func verbSet(verbs metav1.Verbs) map[string]struct{} {
	set := make(map[string]struct{}, len(verbs))
	for _, v := range verbs {
		set[v] = struct{}{}
	}
	return set
}
