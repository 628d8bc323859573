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

package kubeerr

import (
	"fmt"
	"syscall"
	"testing"

	"bazil.org/fuse"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/stretchr/testify/assert"

	"github.com/smpio/kubefs/internal/kubeclient"
	"github.com/smpio/kubefs/internal/resolver"
)

func TestTranslate_Nil(t *testing.T) {
	assert.NoError(t, Translate(nil))
}

func TestTranslate_ResolverErrors(t *testing.T) {
	assert.Equal(t, fuse.ENOTDIR, Translate(resolver.ErrNotADirectory))
	assert.Equal(t, fuse.ENOENT, Translate(resolver.ErrNotFound))
	assert.Equal(t, fuse.ENOENT, Translate(fmt.Errorf("wrapped: %w", resolver.ErrNotFound)))
}

func TestTranslate_SentinelErrors(t *testing.T) {
	assert.Equal(t, fuse.Errno(syscall.EACCES), Translate(ErrReadOnly))
	assert.Equal(t, fuse.Errno(syscall.EACCES), Translate(ErrWriteToDir))
}

func TestTranslate_APIErrors(t *testing.T) {
	gr := schema.GroupResource{Group: "", Resource: "pods"}

	assert.Equal(t, fuse.ENOENT, Translate(apierrors.NewNotFound(gr, "x")))
	assert.Equal(t, fuse.Errno(syscall.EINVAL), Translate(apierrors.NewBadRequest("bad")))
	assert.Equal(t, fuse.Errno(syscall.EINVAL), Translate(apierrors.NewInvalid(schema.GroupKind{Group: "", Kind: "Pod"}, "x", nil)))
}

func TestTranslate_StatusError(t *testing.T) {
	assert.Equal(t, fuse.Errno(syscall.EINVAL), Translate(&kubeclient.StatusError{Code: 400}))
	assert.Equal(t, fuse.ENOENT, Translate(&kubeclient.StatusError{Code: 404}))
	assert.Equal(t, fuse.Errno(syscall.EINVAL), Translate(&kubeclient.StatusError{Code: 422}))
	assert.Equal(t, fuse.Errno(syscall.EIO), Translate(&kubeclient.StatusError{Code: 503}))
}

func TestTranslate_UnknownError(t *testing.T) {
	assert.Equal(t, fuse.Errno(syscall.EIO), Translate(fmt.Errorf("something went wrong")))
}
