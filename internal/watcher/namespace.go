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

// Package watcher runs the long-lived namespace watch that keeps Root's
// child list in sync with the cluster: ADDED appends a namespace, DELETED
// removes it, and MODIFIED/BOOKMARK are ignored since name is the only
// identity the tree cares about.
package watcher

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"

	"github.com/smpio/kubefs/internal/cfg"
	"github.com/smpio/kubefs/internal/discovery"
	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/logger"
	"github.com/smpio/kubefs/internal/node"
)

// Namespaces drives Root's child list from the server's namespace watch
// endpoint, restarting the list+watch cycle with backoff on disconnect.
type Namespaces struct {
	clientset kubernetes.Interface
	engine    *discovery.Engine
	kc        *kubeclient.Client
	cfg       cfg.Config
}

// New builds a Namespaces watcher. clientset is used only for the typed
// namespace list/watch calls; object bodies and listings elsewhere go
// through kc, the raw REST facade.
func New(clientset kubernetes.Interface, engine *discovery.Engine, kc *kubeclient.Client, c cfg.Config) *Namespaces {
	return &Namespaces{clientset: clientset, engine: engine, kc: kc, cfg: c}
}

// Run blocks, driving root's child list until ctx is cancelled. Every
// cycle starts with a fresh list that replaces root's children, then
// watches from that list's resourceVersion; a failed cycle is retried
// after an exponentially growing delay. Callers that need root populated
// before serving call RunInitial first, then go Run(ctx, root).
func (w *Namespaces) Run(ctx context.Context, root *node.Root) error {
	backoff := wait.Backoff{
		Duration: 500 * time.Millisecond,
		Factor:   2,
		Jitter:   0.2,
		Steps:    maxBackoffSteps,
		Cap:      30 * time.Second,
	}

	condition := func() (bool, error) {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}

		if err := w.cycle(ctx, root); err != nil {
			logger.Warnf("namespace watcher: %v, restarting", err)
			return false, nil
		}

		// cycle only returns nil when ctx was cancelled mid-stream.
		return true, nil
	}

	for {
		// ExponentialBackoff returns a timeout once the delay reaches Cap;
		// start it again so the watcher keeps retrying until ctx ends.
		err := wait.ExponentialBackoff(backoff, condition)
		if ctx.Err() != nil || !wait.Interrupted(err) {
			return err
		}
	}
}

// RunInitial performs the first list and populates root synchronously.
func (w *Namespaces) RunInitial(ctx context.Context, root *node.Root) error {
	_, err := w.list(ctx, root)
	return err
}

// cycle runs one list-then-watch iteration: list to get a fresh
// resourceVersion and child snapshot, then watch from there until the
// stream ends or ctx is cancelled.
func (w *Namespaces) cycle(ctx context.Context, root *node.Root) error {
	resourceVersion, err := w.list(ctx, root)
	if err != nil {
		return fmt.Errorf("listing namespaces: %w", err)
	}

	return w.watchFrom(ctx, resourceVersion, root)
}

func (w *Namespaces) list(ctx context.Context, root *node.Root) (string, error) {
	list, err := w.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", err
	}

	children := make([]node.Node, 0, len(list.Items)+2)
	children = append(children, node.NewNamespace(nil, w.engine, w.kc, w.cfg))

	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i])
		if err != nil {
			logger.Warnf("namespace watcher: skipping %s: %v", list.Items[i].Name, err)
			continue
		}
		children = append(children, node.NewNamespace(obj, w.engine, w.kc, w.cfg))
	}

	children = append(children, node.NewEmptyFile(".metadata_never_index"))

	root.SetChildren(children)

	return list.ResourceVersion, nil
}

func (w *Namespaces) watchFrom(ctx context.Context, resourceVersion string, root *node.Root) error {
	stream, err := w.clientset.CoreV1().Namespaces().Watch(ctx, metav1.ListOptions{
		ResourceVersion:     resourceVersion,
		AllowWatchBookmarks: true,
	})
	if err != nil {
		return fmt.Errorf("opening watch: %w", err)
	}
	defer stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-stream.ResultChan():
			if !ok {
				return fmt.Errorf("watch stream closed")
			}
			if err := w.handle(event, root); err != nil {
				logger.Warnf("namespace watcher: %v", err)
			}
		}
	}
}

func (w *Namespaces) handle(event watch.Event, root *node.Root) error {
	switch event.Type {
	case watch.Added:
		ns, ok := event.Object.(*corev1.Namespace)
		if !ok {
			return fmt.Errorf("ADDED event with unexpected object type %T", event.Object)
		}
		obj, err := toUnstructured(ns)
		if err != nil {
			return err
		}
		w.addNamespace(root, obj)

	case watch.Deleted:
		ns, ok := event.Object.(*corev1.Namespace)
		if !ok {
			return fmt.Errorf("DELETED event with unexpected object type %T", event.Object)
		}
		w.removeNamespace(root, ns.Name)

	case watch.Modified, watch.Bookmark:
		// Name is the tree's only identity for a namespace; nothing to do.

	case watch.Error:
		return fmt.Errorf("watch error event: %v", event.Object)
	}

	return nil
}

func (w *Namespaces) addNamespace(root *node.Root, obj *unstructured.Unstructured) {
	current, _ := root.Children(context.Background())

	next := make([]node.Node, 0, len(current)+1)
	for _, c := range current {
		if c.Name() == obj.GetName() {
			continue // superseded by this ADDED event
		}
		next = append(next, c)
	}
	next = append(next, node.NewNamespace(obj, w.engine, w.kc, w.cfg))

	root.SetChildren(next)
}

func (w *Namespaces) removeNamespace(root *node.Root, name string) {
	current, _ := root.Children(context.Background())

	next := make([]node.Node, 0, len(current))
	for _, c := range current {
		if ns, ok := c.(*node.Namespace); ok && ns.Object != nil && ns.Name() == name {
			continue
		}
		next = append(next, c)
	}

	root.SetChildren(next)
}

func toUnstructured(ns *corev1.Namespace) (*unstructured.Unstructured, error) {
	m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(ns)
	if err != nil {
		return nil, fmt.Errorf("converting namespace to unstructured: %w", err)
	}
	return &unstructured.Unstructured{Object: m}, nil
}

// maxBackoffSteps is large enough that the step count never runs out before
// the delay reaches Cap; reaching Cap ends one ExponentialBackoff call, and
// Run then starts the next one from the initial delay.
const maxBackoffSteps = 1 << 30
