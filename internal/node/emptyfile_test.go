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

package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFile(t *testing.T) {
	f := NewEmptyFile(".metadata_never_index")

	assert.Equal(t, ".metadata_never_index", f.Name())
	assert.False(t, f.IsDir())
	assert.Equal(t, StatOverlay{}, f.Stat())

	body, err := f.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestEmptyFile_ChildrenPanics(t *testing.T) {
	f := NewEmptyFile("x")
	assert.Panics(t, func() {
		f.Children(context.Background())
	})
}
