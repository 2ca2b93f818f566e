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

// Package ratelimit implements the Rate Limiter: three window
// strategies over a conditional kvstore.Store, each exposing check_limit,
// record_request, check_and_increment, and get_usage.
package ratelimit

import (
	"strconv"
	"strings"
)

// Key identifies what is being limited. Identifier, Resource, and
// Operation are required and trimmed; Metadata is sanitized on use (spec
// §4.J).
type Key struct {
	Identifier string
	Resource   string
	Operation  string
	Metadata   map[string]string
}

// sanitize trims the three required fields and drops blank metadata keys,
// coercing values to strings (already strings in Go, so this only filters
// keys) — the "Metadata sanitization".
func (k Key) sanitize() Key {
	out := Key{
		Identifier: strings.TrimSpace(k.Identifier),
		Resource:   strings.TrimSpace(k.Resource),
		Operation:  strings.TrimSpace(k.Operation),
	}
	if len(k.Metadata) > 0 {
		out.Metadata = map[string]string{}
		for key, value := range k.Metadata {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			out.Metadata[key] = strings.TrimSpace(value)
		}
	}
	return out
}

// pk renders the RateLimitEntry partition key for a window starting at
// windowStartUnix.
func (k Key) pk(windowStartUnix int64) string {
	return k.Identifier + "#" + strconv.FormatInt(windowStartUnix, 10)
}

// sk renders the RateLimitEntry sort key, optionally suffixed for
// multi-window sub-windows.
func (k Key) sk(suffix string) string {
	return k.Resource + "#" + k.Operation + suffix
}
