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

// Package sanitize collects the pure, I/O-free helpers shared across the
// runtime: metadata/tag sanitization, Cache-Control construction, metric
// and log dimension naming, and the Cloudfront-fronted host header builder
// for the socket gateway.
//
// Every function here is convergent: sanitizing an already-sanitized value
// returns the same value.
package sanitize

import "strings"

// Metadata trims keys and values and drops keys that are blank after
// trimming, mirroring ratelimit.Key's metadata handling so the same rule
// applies everywhere metadata crosses a process boundary.
func Metadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DimensionName normalizes a metric tag or log field name: lowercased,
// trimmed, with any run of characters outside [a-z0-9_.] collapsed to a
// single underscore. The observability sink (observability.Sink's Metric
// and Span) calls this before attaching a tag or attribute key so
// handler-supplied names can't smuggle incompatible characters into a
// Prometheus label or span attribute key.
func DimensionName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
