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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	bazilfuse "bazil.org/fuse"
	fusefslib "bazil.org/fuse/fs"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"

	"github.com/smpio/kubefs/internal/cfg"
	kdiscovery "github.com/smpio/kubefs/internal/discovery"
	"github.com/smpio/kubefs/internal/fusefs"
	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/logger"
	"github.com/smpio/kubefs/internal/node"
	"github.com/smpio/kubefs/internal/watcher"
)

// mount resolves cluster credentials, builds the virtual tree, and serves
// it at mountPoint until the process is signalled to stop.
func mount(ctx context.Context, mountPoint string, c cfg.Config) error {
	restConfig, err := kubeclient.ResolveConfig()
	if err != nil {
		return fmt.Errorf("resolving cluster credentials: %w", err)
	}

	kc, err := kubeclient.New(restConfig)
	if err != nil {
		return fmt.Errorf("building REST client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("building discovery client: %w", err)
	}
	engine, err := kdiscovery.Discover(discoveryClient)
	if err != nil {
		return fmt.Errorf("discovering API resources: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("building typed clientset: %w", err)
	}

	root := node.NewRoot(nil)
	nsWatcher := watcher.New(clientset, engine, kc, c)

	logger.Infof("listing namespaces for initial tree population")
	if err := nsWatcher.RunInitial(ctx, root); err != nil {
		return fmt.Errorf("initial namespace list: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		if err := nsWatcher.Run(watchCtx, root); err != nil && watchCtx.Err() == nil {
			logger.Errorf("namespace watcher exited: %v", err)
		}
	}()

	conn, err := bazilfuse.Mount(
		mountPoint,
		bazilfuse.FSName("kubefs"),
		bazilfuse.Subtype("kubefs"),
	)
	if err != nil {
		return fmt.Errorf("mounting %s: %w", mountPoint, err)
	}
	defer conn.Close()

	registerSignalHandler(mountPoint)

	logger.Infof("serving at %s", mountPoint)
	if err := fusefslib.Serve(conn, fusefs.New(root)); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	<-conn.Ready
	return conn.MountError
}

// registerSignalHandler unmounts mountPoint on SIGINT/SIGTERM so that
// Serve's loop returns cleanly instead of leaving a stale mount behind.
func registerSignalHandler(mountPoint string) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		logger.Infof("received signal, unmounting %s", mountPoint)
		if err := bazilfuse.Unmount(mountPoint); err != nil {
			logger.Errorf("unmount failed: %v", err)
		}
	}()
}
