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

// Package kubeclient is the authenticated REST facade over the cluster's
// API server: URL construction, content-type negotiation between JSON
// (listings) and YAML (object bodies), and the write-back PUT.
package kubeclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/rest"

	"github.com/smpio/kubefs/internal/discovery"
)

const (
	AcceptJSON = "application/json"
	AcceptYAML = "application/yaml"
)

// StatusError is the error type for requests whose response never reached
// the typed client-go error path (the raw YAML-accept requests issued by
// this client bypass client-go's object decoder entirely).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("kube api: HTTP %d: %s", e.Code, e.Body)
}

// Client is the authenticated REST facade described by the API client
// facade component: it knows how to build URLs from a resource descriptor
// and issue GET/PUT requests with the right Accept/Content-Type headers.
// It never itself loads credentials; those arrive via the *rest.Config it
// is constructed from.
type Client struct {
	http *http.Client
	base string
}

// New builds a Client from an already-authenticated rest.Config (the
// opaque credential source named in the system's Non-goals).
func New(restConfig *rest.Config) (*Client, error) {
	httpClient, err := rest.HTTPClientFor(restConfig)
	if err != nil {
		return nil, fmt.Errorf("building HTTP client: %w", err)
	}

	return &Client{
		http: httpClient,
		base: strings.TrimRight(restConfig.Host, "/"),
	}, nil
}

// URLFor builds the absolute API path for a resource, optionally scoped to
// a namespace and/or a specific object name, per spec: "" group -> /api/
// <version>, else /apis/<group>/<version>; + /namespaces/<ns> iff
// namespaced and namespace non-empty; + /<pluralName>; + /<name> if given.
func (c *Client) URLFor(desc discovery.ResourceDescriptor, namespace, name string) string {
	var b strings.Builder
	b.WriteString(c.base)

	if desc.Group == "" {
		b.WriteString("/api/")
		b.WriteString(desc.APIVersion)
	} else {
		b.WriteString("/apis/")
		b.WriteString(desc.Group)
		b.WriteString("/")
		b.WriteString(desc.APIVersion)
	}

	if desc.Namespaced && namespace != "" {
		b.WriteString("/namespaces/")
		b.WriteString(namespace)
	}

	b.WriteString("/")
	b.WriteString(desc.PluralName)

	if name != "" {
		b.WriteString("/")
		b.WriteString(name)
	}

	return b.String()
}

// Get issues an authenticated GET against url with the given Accept header.
// For AcceptJSON, the response is decoded into an *unstructured.Unstructured
// generic map; for anything else (AcceptYAML in practice) the raw response
// body is returned untouched.
func (c *Client) Get(ctx context.Context, url, accept string) ([]byte, *unstructured.Unstructured, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if accept != AcceptJSON {
		return body, nil, nil
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(body); err != nil {
		return nil, nil, fmt.Errorf("decoding JSON response: %w", err)
	}

	return body, obj, nil
}

// List returns the server's list response for a resource, scoped to
// namespace when the descriptor is namespaced and namespace is non-empty.
func (c *Client) List(ctx context.Context, desc discovery.ResourceDescriptor, namespace string) (*unstructured.UnstructuredList, error) {
	url := c.URLFor(desc, namespace, "")

	_, obj, err := c.Get(ctx, url, AcceptJSON)
	if err != nil {
		return nil, err
	}

	list := &unstructured.UnstructuredList{}
	list.Object = obj.UnstructuredContent()
	items, found, err := unstructured.NestedSlice(obj.Object, "items")
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	if found {
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			list.Items = append(list.Items, unstructured.Unstructured{Object: m})
		}
	}

	return list, nil
}

// GetObject fetches a single named object in the given accept format.
func (c *Client) GetObject(ctx context.Context, desc discovery.ResourceDescriptor, namespace, name, accept string) ([]byte, *unstructured.Unstructured, error) {
	url := c.URLFor(desc, namespace, name)
	return c.Get(ctx, url, accept)
}

// Put writes the full body back to url with the given content type, used
// by the write-back file handle's flush.
func (c *Client) Put(ctx context.Context, url string, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}
