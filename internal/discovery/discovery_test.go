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

package discovery

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubefake "k8s.io/client-go/discovery/fake"
	clientgotesting "k8s.io/client-go/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preferredFake serves Fake.Resources from ServerPreferredResources, which
// the client-go fake otherwise answers with an empty result.
type preferredFake struct {
	*kubefake.FakeDiscovery
}

func (f preferredFake) ServerPreferredResources() ([]*metav1.APIResourceList, error) {
	return f.Resources, nil
}

func fakeDiscoveryClient(resources []*metav1.APIResourceList) preferredFake {
	return preferredFake{&kubefake.FakeDiscovery{
		Fake: &clientgotesting.Fake{Resources: resources},
	}}
}

func TestDiscover_PartitionsNamespacedAndGlobal(t *testing.T) {
	resources := []*metav1.APIResourceList{
		{
			GroupVersion: "v1",
			APIResources: []metav1.APIResource{
				{Name: "pods", Kind: "Pod", Namespaced: true, Verbs: metav1.Verbs{"get", "list", "watch"}},
				{Name: "nodes", Kind: "Node", Namespaced: false, Verbs: metav1.Verbs{"get", "list"}},
			},
		},
		{
			GroupVersion: "apps/v1",
			APIResources: []metav1.APIResource{
				{Name: "deployments", Kind: "Deployment", Namespaced: true, Verbs: metav1.Verbs{"get", "list"}},
			},
		},
	}

	client := fakeDiscoveryClient(resources)

	engine, err := Discover(client)
	require.NoError(t, err)

	require.Contains(t, engine.Namespaced, "")
	assert.Contains(t, engine.Namespaced[""], "Pod")
	require.Contains(t, engine.Namespaced, "apps")
	assert.Contains(t, engine.Namespaced["apps"], "Deployment")

	require.Contains(t, engine.Global, "")
	assert.Contains(t, engine.Global[""], "Node")
}

func TestDiscover_SkipsListKindsAndMissingVerbs(t *testing.T) {
	resources := []*metav1.APIResourceList{
		{
			GroupVersion: "v1",
			APIResources: []metav1.APIResource{
				{Name: "pods", Kind: "PodList", Namespaced: true, Verbs: metav1.Verbs{"get", "list"}},
				{Name: "events", Kind: "Event", Namespaced: true, Verbs: metav1.Verbs{"create"}},
				{Name: "secrets", Kind: "Secret", Namespaced: true, Verbs: metav1.Verbs{"get", "list"}},
			},
		},
	}

	client := fakeDiscoveryClient(resources)

	engine, err := Discover(client)
	require.NoError(t, err)

	assert.NotContains(t, engine.Namespaced[""], "PodList")
	assert.NotContains(t, engine.Namespaced[""], "Event")
	assert.Contains(t, engine.Namespaced[""], "Secret")
}

func TestDiscover_MalformedGroupVersionIsSkipped(t *testing.T) {
	resources := []*metav1.APIResourceList{
		{
			GroupVersion: "a/b/c",
			APIResources: []metav1.APIResource{
				{Name: "widgets", Kind: "Widget", Namespaced: true, Verbs: metav1.Verbs{"get", "list"}},
			},
		},
	}

	client := fakeDiscoveryClient(resources)

	engine, err := Discover(client)
	require.NoError(t, err)
	assert.Empty(t, engine.Namespaced)
	assert.Empty(t, engine.Global)
}

func TestResourceDescriptor_HasVerb(t *testing.T) {
	desc := ResourceDescriptor{Verbs: map[string]struct{}{"get": {}, "list": {}}}

	assert.True(t, desc.HasVerb("get"))
	assert.False(t, desc.HasVerb("delete"))
}
