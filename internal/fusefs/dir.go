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

package fusefs

import (
	"context"
	"path"

	bazilfuse "bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/smpio/kubefs/internal/kubeerr"
)

// dirNode is a directory in the virtual tree, identified by its full path.
// It re-resolves its underlying node on every call rather than caching it,
// so it always reflects the node model's own TTL-cached state.
type dirNode struct {
	fs   *FS
	path string
}

var (
	_ fusefs.Node               = (*dirNode)(nil)
	_ fusefs.NodeStringLookuper = (*dirNode)(nil)
	_ fusefs.HandleReadDirAller = (*dirNode)(nil)
)

func (d *dirNode) Attr(ctx context.Context, attr *bazilfuse.Attr) error {
	n, err := d.fs.resolve(ctx, d.path)
	if err != nil {
		return err
	}
	*attr = attrFor(n, d.path, d.fs)
	return nil
}

func (d *dirNode) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	childPath := joinPath(d.path, name)

	n, err := d.fs.resolve(ctx, childPath)
	if err != nil {
		return nil, err
	}

	if n.IsDir() {
		return &dirNode{fs: d.fs, path: childPath}, nil
	}
	return &fileNode{fs: d.fs, path: childPath}, nil
}

func (d *dirNode) ReadDirAll(ctx context.Context) ([]bazilfuse.Dirent, error) {
	n, err := d.fs.resolve(ctx, d.path)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, bazilfuse.ENOTDIR
	}

	children, err := n.Children(ctx)
	if err != nil {
		return nil, kubeerr.Translate(err)
	}

	ents := make([]bazilfuse.Dirent, 0, len(children)+2)
	ents = append(ents, bazilfuse.Dirent{Name: "."}, bazilfuse.Dirent{Name: ".."})
	for _, c := range children {
		typ := bazilfuse.DT_File
		if c.IsDir() {
			typ = bazilfuse.DT_Dir
		}
		ents = append(ents, bazilfuse.Dirent{Name: c.Name(), Type: typ})
	}

	return ents, nil
}

func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return path.Join(dir, name)
}
