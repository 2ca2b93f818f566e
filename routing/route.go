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

// Package routing implements the Router: pattern compilation,
// longest-specific match, path-parameter extraction, and Allow computation.
package routing

import (
	"strings"

	"github.com/theory-cloud/AppTheory/canonical"
)

// SegmentKind tags one compiled path segment.
type SegmentKind int

const (
	// SegmentStatic is a literal path segment.
	SegmentStatic SegmentKind = iota
	// SegmentParam is a `{name}` (or `:name`) capturing segment.
	SegmentParam
	// SegmentProxy is a trailing `{name+}` segment matching the remainder
	// of the path, joined by "/".
	SegmentProxy
)

// Segment is one compiled path segment.
type Segment struct {
	Kind    SegmentKind
	Literal string // for SegmentStatic
	Name    string // for SegmentParam / SegmentProxy
}

// Handler is the terminal handler a route dispatches to.
type Handler func(ctx HandlerContext) (*canonical.Response, error)

// HandlerContext is the minimal context surface the router hands to a
// matched route; the `pipeline`/`apptheory` packages supply the concrete
// implementation.
type HandlerContext interface {
	Request() *canonical.Request
}

// Route is one registered route.
type Route struct {
	Method       string
	Pattern      string
	Segments     []Segment
	Handler      Handler
	AuthRequired bool

	// insertionOrder breaks specificity ties; lower wins.
	insertionOrder int
}

// specificity returns the lexicographic key:
// (static_count, param_count, has_proxy, insertion_order). has_proxy is
// inverted (stored as 0 for "has proxy", 1 for "no proxy") and
// insertion_order is inverted (negated) so that a plain >-comparison over
// the tuple selects the maximum (more statics wins; among equal
// statics, more params wins; a non-proxy route beats a proxy route; lower
// insertion order wins ties).
func (r *Route) specificity() [4]int {
	var static, param int
	hasProxy := 0
	for _, seg := range r.Segments {
		switch seg.Kind {
		case SegmentStatic:
			static++
		case SegmentParam:
			param++
		case SegmentProxy:
			hasProxy = 1
		}
	}
	noProxy := 1 - hasProxy
	return [4]int{static, param, noProxy, -r.insertionOrder}
}

// less reports whether r is strictly less specific than other (used to pick
// the maximum).
func (r *Route) less(other *Route) bool {
	a, b := r.specificity(), other.specificity()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// segmentsOf splits a path into non-empty segments. An empty path segment
// never matches, so both pattern compilation and request
// matching use the same splitter.
func segmentsOf(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
