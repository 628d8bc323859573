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

// Package kubeerr translates API and resolver faults into the POSIX errno
// values the filesystem protocol expects, per the error mapper component.
package kubeerr

import (
	"errors"
	"syscall"

	"bazil.org/fuse"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/resolver"
)

// Sentinel errors raised by higher layers for conditions that have no
// natural client-go or HTTP-status representation.
var (
	// ErrReadOnly is raised when a write is attempted against a node that
	// cannot accept one (EmptyFileNode, or any node backed by a read-only
	// listing endpoint).
	ErrReadOnly = errors.New("node is read-only")

	// ErrWriteToDir is raised when a file open() resolves to a directory
	// node, whatever the requested access mode.
	ErrWriteToDir = errors.New("cannot open a directory for writing")
)

// Translate maps err to the fuse.Errno the kernel should see. Unrecognized
// errors fall back to EIO, never invented data.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, resolver.ErrNotADirectory):
		return fuse.ENOTDIR
	case errors.Is(err, resolver.ErrNotFound):
		return fuse.ENOENT
	case errors.Is(err, ErrReadOnly), errors.Is(err, ErrWriteToDir):
		return fuse.Errno(syscall.EACCES)
	}

	if apierrors.IsNotFound(err) {
		return fuse.ENOENT
	}
	if apierrors.IsBadRequest(err) {
		return fuse.Errno(syscall.EINVAL)
	}
	if apierrors.IsInvalid(err) {
		return fuse.Errno(syscall.EINVAL)
	}

	var statusErr *kubeclient.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case 400:
			return fuse.Errno(syscall.EINVAL)
		case 404:
			return fuse.ENOENT
		case 422:
			return fuse.Errno(syscall.EINVAL)
		default:
			return fuse.Errno(syscall.EIO)
		}
	}

	return fuse.Errno(syscall.EIO)
}
