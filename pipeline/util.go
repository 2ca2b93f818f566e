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

package pipeline

import (
	"encoding/json"
	"time"
)

// clocker is satisfied by the root Context; used so error rendering can
// stamp a deterministic timestamp via the invocation's injected Clock
// instead of time.Now.
type clocker interface {
	Now() time.Time
}

func nowOf(ctx any) time.Time {
	if c, ok := ctx.(clocker); ok {
		return c.Now()
	}
	return time.Now()
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":{"code":"app.internal","message":"failed to encode error body"}}`)
	}
	return b
}
