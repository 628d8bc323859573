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

// Package fusefs adapts the virtual tree to bazil.org/fuse: getattr,
// readdir, open, read, write, truncate, flush, and release against the
// resolved node, plus the per-path write buffer and open-counter tables
// that make the server's no-partial-write REST API look like a POSIX file.
package fusefs

import (
	"context"
	"os"
	"sync"
	"time"

	bazilfuse "bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/smpio/kubefs/internal/kubeerr"
	"github.com/smpio/kubefs/internal/logger"
	"github.com/smpio/kubefs/internal/node"
	"github.com/smpio/kubefs/internal/resolver"
)

const (
	dirMode  = os.ModeDir | 0o777
	fileMode = 0o666
)

// FS is the top-level bazil.org/fuse filesystem. It owns the per-path
// write buffer and open-counter tables; every node-level cache lives on
// the nodes themselves.
type FS struct {
	root *node.Root

	mu         sync.Mutex
	buffers    map[string][]byte
	truncated  map[string]int64
	dirty      map[string]bool
	openCounts map[string]int
}

// New builds an FS rooted at root.
func New(root *node.Root) *FS {
	return &FS{
		root:       root,
		buffers:    make(map[string][]byte),
		truncated:  make(map[string]int64),
		dirty:      make(map[string]bool),
		openCounts: make(map[string]int),
	}
}

// Root implements bazil.org/fuse/fs.FS.
func (f *FS) Root() (fusefs.Node, error) {
	return &dirNode{fs: f, path: "/"}, nil
}

func (f *FS) resolve(ctx context.Context, path string) (node.Node, error) {
	n, err := resolver.Resolve(ctx, f.root, path)
	if err != nil {
		logger.Debugf("resolve %s: %v", path, err)
		return nil, kubeerr.Translate(err)
	}
	return n, nil
}

// bufferedSize returns the size override for path: a pending ftruncate
// takes precedence over an open buffer's actual length, since the override
// must be visible even before any byte has been written through it.
func (f *FS) bufferedSize(path string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if size, ok := f.truncated[path]; ok {
		return size, true
	}

	buf, ok := f.buffers[path]
	if !ok {
		return 0, false
	}
	return int64(len(buf)), true
}

// truncate records a size override for path and marks it dirty. For a
// non-zero size it populates the write buffer from the node if needed and
// slices it when size is shorter; a longer size leaves the buffer as is. A
// zero-size truncate short-circuits the node fetch entirely, matching the
// common O_TRUNC-on-open case.
func (f *FS) truncate(ctx context.Context, path string, n node.Node, size int64) error {
	f.mu.Lock()
	f.truncated[path] = size
	f.dirty[path] = true
	f.mu.Unlock()

	if size == 0 {
		f.setBuffer(path, []byte{})
		return nil
	}

	buf, err := f.ensureBuffer(ctx, path, n)
	if err != nil {
		return err
	}
	if size < int64(len(buf)) {
		f.setBuffer(path, buf[:size])
	}

	return nil
}

// write splices data into path's buffer at offset: buffer[:offset] + data +
// buffer[offset+len(data):], extending the buffer when the write reaches
// past its current end. Clears any pending truncate override.
func (f *FS) write(ctx context.Context, path string, n node.Node, data []byte, offset int64) (int, error) {
	buf, err := f.ensureBuffer(ctx, path, n)
	if err != nil {
		return 0, err
	}

	head := clampSlice(buf, 0, offset)
	tail := clampSlice(buf, offset+int64(len(data)), int64(len(buf)))

	next := make([]byte, 0, len(head)+len(data)+len(tail))
	next = append(next, head...)
	next = append(next, data...)
	next = append(next, tail...)

	f.mu.Lock()
	delete(f.truncated, path)
	f.buffers[path] = next
	f.dirty[path] = true
	f.mu.Unlock()

	return len(data), nil
}

// clampSlice returns buf[from:to], clamping both bounds into [0, len(buf)]
// and returning an empty slice if the range is inverted.
func clampSlice(buf []byte, from, to int64) []byte {
	n := int64(len(buf))
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	if to < from {
		to = from
	}
	if to > n {
		to = n
	}
	return buf[from:to]
}

// ensureBuffer returns the current write buffer for path, populating it
// from n.Read on first use.
func (f *FS) ensureBuffer(ctx context.Context, path string, n node.Node) ([]byte, error) {
	f.mu.Lock()
	buf, ok := f.buffers[path]
	f.mu.Unlock()
	if ok {
		return buf, nil
	}

	data, err := n.Read(ctx)
	if err != nil {
		return nil, kubeerr.Translate(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if buf, ok := f.buffers[path]; ok {
		// Another racer populated it first; keep theirs.
		return buf, nil
	}
	f.buffers[path] = data
	return data, nil
}

func (f *FS) setBuffer(path string, data []byte) {
	f.mu.Lock()
	f.buffers[path] = data
	f.mu.Unlock()
}

func (f *FS) openHandle(path string) {
	f.mu.Lock()
	f.openCounts[path]++
	f.mu.Unlock()
}

func (f *FS) closeHandle(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.openCounts[path]--
	if f.openCounts[path] <= 0 {
		delete(f.openCounts, path)
		delete(f.buffers, path)
		delete(f.truncated, path)
		delete(f.dirty, path)
	}
}

// flushIfDirty PUTs the buffer back via write when path has been written or
// truncated since the last flush, then clears the dirty flag. A no-op on a
// clean path, matching the documented "flush is a no-op unless dirty".
func (f *FS) flushIfDirty(ctx context.Context, path string, writable node.Writable) error {
	f.mu.Lock()
	dirty := f.dirty[path]
	buf := f.buffers[path]
	f.mu.Unlock()

	if !dirty {
		return nil
	}

	if err := writable.Write(ctx, buf); err != nil {
		return kubeerr.Translate(err)
	}

	f.mu.Lock()
	f.dirty[path] = false
	f.mu.Unlock()

	return nil
}

func attrFor(n node.Node, path string, fsys *FS) bazilfuse.Attr {
	attr := bazilfuse.Attr{}

	if n.IsDir() {
		attr.Mode = dirMode
		attr.Nlink = 2
	} else {
		attr.Mode = fileMode
		attr.Nlink = 1
	}

	overlay := n.Stat()
	if overlay.Size != nil {
		attr.Size = uint64(*overlay.Size)
	}
	if overlay.Ctime != nil {
		attr.Ctime = unixToTime(*overlay.Ctime)
	}
	if overlay.Mtime != nil {
		attr.Mtime = unixToTime(*overlay.Mtime)
	}

	if size, ok := fsys.bufferedSize(path); ok {
		attr.Size = uint64(size)
	}

	return attr
}

func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0)
}
