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

import "context"

// EmptyFile is a fixed, zero-byte, read-only file. Root carries one named
// ".metadata_never_index" to suppress macOS Spotlight indexing of mounts.
type EmptyFile struct {
	unsupportedDir

	name string
}

// NewEmptyFile builds an EmptyFile node named name.
func NewEmptyFile(name string) *EmptyFile {
	return &EmptyFile{name: name}
}

func (f *EmptyFile) Name() string { return f.name }

func (*EmptyFile) IsDir() bool { return false }

func (*EmptyFile) Read(ctx context.Context) ([]byte, error) { return nil, nil }

func (*EmptyFile) Stat() StatOverlay { return StatOverlay{} }
