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

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfof_WritesTextByDefault(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, false)

	Infof("hello %s", "world")

	assert.Contains(t, buf.String(), "hello world")
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestDebugf_SuppressedUnlessDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, false)

	Debugf("should not appear")
	assert.Empty(t, buf.String())

	Init(&buf, false, true)
	Debugf("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, true, false)

	Warnf("disk %s", "full")

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "disk full", record["msg"])
	assert.Equal(t, "WARN", record["level"])
}

func TestErrorf_WritesErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false, false)

	Errorf("boom: %v", assert.AnError)

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "boom:")
}
