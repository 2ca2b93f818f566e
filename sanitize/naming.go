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

package sanitize

import "strings"

// RoutePattern normalizes a route pattern for use as a metric/span
// dimension value: the leading slash is kept, trailing slashes are
// trimmed (except for the root route), and path parameter braces are
// preserved so "/widgets/{id}" stays a stable, low-cardinality label.
func RoutePattern(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "/"
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if pattern != "/" {
		pattern = strings.TrimRight(pattern, "/")
	}
	return pattern
}

// SpanName builds an "http <METHOD> <PATTERN>" span name from a route
// pattern. The P2 pipeline does not call it: pipeline/p2.go builds its span
// name from the request path.
func SpanName(method, pattern string) string {
	return "http " + strings.ToUpper(strings.TrimSpace(method)) + " " + RoutePattern(pattern)
}
