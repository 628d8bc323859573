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

	bazilfuse "bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/smpio/kubefs/internal/kubeerr"
	"github.com/smpio/kubefs/internal/node"
)

// fileNode is a file in the virtual tree, identified by its full path. It
// re-resolves its underlying node on every call.
type fileNode struct {
	fs   *FS
	path string
}

var (
	_ fusefs.Node          = (*fileNode)(nil)
	_ fusefs.NodeOpener    = (*fileNode)(nil)
	_ fusefs.NodeSetattrer = (*fileNode)(nil)
)

func (f *fileNode) Attr(ctx context.Context, attr *bazilfuse.Attr) error {
	n, err := f.fs.resolve(ctx, f.path)
	if err != nil {
		return err
	}
	*attr = attrFor(n, f.path, f.fs)
	return nil
}

// Open resolves the node once and, for O_TRUNC, immediately schedules the
// zero-length truncate the spec calls for before any read or write occurs.
func (f *fileNode) Open(ctx context.Context, req *bazilfuse.OpenRequest, resp *bazilfuse.OpenResponse) (fusefs.Handle, error) {
	n, err := f.fs.resolve(ctx, f.path)
	if err != nil {
		return nil, err
	}
	if n.IsDir() {
		return nil, kubeerr.Translate(kubeerr.ErrWriteToDir)
	}

	if req.Flags.IsWriteOnly() || req.Flags.IsReadWrite() {
		if _, ok := n.(node.Writable); !ok {
			return nil, kubeerr.Translate(kubeerr.ErrReadOnly)
		}
	}

	f.fs.openHandle(f.path)

	if req.Flags&bazilfuse.OpenTruncate != 0 {
		if err := f.fs.truncate(ctx, f.path, n, 0); err != nil {
			f.fs.closeHandle(f.path)
			return nil, err
		}
	}

	return &handle{fs: f.fs, path: f.path, node: n}, nil
}

// Setattr implements ftruncate/truncate against the resolved node. Only
// size changes are meaningful here; other attribute changes (mode, times)
// are accepted and ignored, matching the advisory-only mode bits the
// adapter reports.
func (f *fileNode) Setattr(ctx context.Context, req *bazilfuse.SetattrRequest, resp *bazilfuse.SetattrResponse) error {
	if !req.Valid.Size() {
		n, err := f.fs.resolve(ctx, f.path)
		if err != nil {
			return err
		}
		resp.Attr = attrFor(n, f.path, f.fs)
		return nil
	}

	n, err := f.fs.resolve(ctx, f.path)
	if err != nil {
		return err
	}

	if err := f.fs.truncate(ctx, f.path, n, int64(req.Size)); err != nil {
		return err
	}

	resp.Attr = attrFor(n, f.path, f.fs)
	return nil
}

// handle is an open file descriptor over path. Its read/write operations
// go through the FS-level buffer table, which is shared across every
// handle open on the same path; release only drops the buffer when the
// last handle on the path closes.
type handle struct {
	fs   *FS
	path string
	node node.Node
}

var (
	_ fusefs.Handle         = (*handle)(nil)
	_ fusefs.HandleReader   = (*handle)(nil)
	_ fusefs.HandleWriter   = (*handle)(nil)
	_ fusefs.HandleFlusher  = (*handle)(nil)
	_ fusefs.HandleReleaser = (*handle)(nil)
	_ fusefs.HandleFsyncer  = (*handle)(nil)
)

func (h *handle) Read(ctx context.Context, req *bazilfuse.ReadRequest, resp *bazilfuse.ReadResponse) error {
	buf, err := h.fs.ensureBuffer(ctx, h.path, h.node)
	if err != nil {
		return err
	}

	resp.Data = clampSlice(buf, req.Offset, req.Offset+int64(req.Size))
	return nil
}

func (h *handle) Write(ctx context.Context, req *bazilfuse.WriteRequest, resp *bazilfuse.WriteResponse) error {
	if _, ok := h.node.(node.Writable); !ok {
		return kubeerr.Translate(kubeerr.ErrReadOnly)
	}

	n, err := h.fs.write(ctx, h.path, h.node, req.Data, req.Offset)
	if err != nil {
		return err
	}

	resp.Size = n
	return nil
}

// Flush PUTs the buffer back via the node's Write when dirty; a clean
// handle's flush is a no-op. The same handle may flush many times, each an
// independent full-body update.
func (h *handle) Flush(ctx context.Context, req *bazilfuse.FlushRequest) error {
	writable, ok := h.node.(node.Writable)
	if !ok {
		return nil
	}
	return h.fs.flushIfDirty(ctx, h.path, writable)
}

func (h *handle) Release(ctx context.Context, req *bazilfuse.ReleaseRequest) error {
	h.fs.closeHandle(h.path)
	return nil
}

// Fsync is equivalent to flush: there is no separate durability guarantee
// to provide against a REST API.
func (h *handle) Fsync(ctx context.Context, req *bazilfuse.FsyncRequest) error {
	writable, ok := h.node.(node.Writable)
	if !ok {
		return nil
	}
	return h.fs.flushIfDirty(ctx, h.path, writable)
}
