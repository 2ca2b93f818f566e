// Copyright 2026 The AppTheory Authors
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

package observability

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var defaultSink atomic.Pointer[Sink]

func init() {
	defaultSink.Store(&Sink{Logger: slog.New(slog.NewJSONHandler(os.Stderr, nil))})
}

// SetDefault installs s as the process-wide sink cross-cutting helpers
// (sanitize-adjacent code with no App handle, e.g. a dispatch-level
// deserialization failure) report through. Request-scoped code should
// still receive its Sink through App construction
// (apptheory.WithObservability); the singleton accessor is a fallback
// for code with no such handle, not the primary path.
func SetDefault(s *Sink) {
	if s == nil {
		return
	}
	defaultSink.Store(s)
}

// Default returns the process-wide Sink, initialized to a JSON logger on
// stderr with no metrics/tracing until SetDefault is called.
func Default() *Sink {
	return defaultSink.Load()
}
