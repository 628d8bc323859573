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

// Package logger provides the process-wide structured logger, backed by
// log/slog, with an optional switch to JSON output for machine consumption.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init (re)configures the process-wide logger. jsonFormat selects a JSON
// handler over the default text one; debug lowers the level to include
// Debug-severity records (used for FUSE upcall tracing).
func Init(w io.Writer, jsonFormat bool, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	current = slog.New(handler)
	mu.Unlock()
}

func get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Debugf logs a debug-level, printf-style message. Used for upcall tracing.
func Debugf(format string, args ...any) {
	get().Debug(fmt.Sprintf(format, args...))
}

// Infof logs an info-level, printf-style message.
func Infof(format string, args ...any) {
	get().Info(fmt.Sprintf(format, args...))
}

// Warnf logs a warning-level, printf-style message.
func Warnf(format string, args ...any) {
	get().Warn(fmt.Sprintf(format, args...))
}

// Errorf logs an error-level, printf-style message.
func Errorf(format string, args ...any) {
	get().Error(fmt.Sprintf(format, args...))
}
