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

package routing

import (
	"sort"
	"strings"
)

// NotFoundError and MethodNotAllowedError are the two routing-level outcomes
// the pipeline must distinguish.
type NotFoundError struct{}

func (NotFoundError) Error() string { return "no route matches path" }

// MethodNotAllowedError carries the Allow-header method set for a path that
// matched on shape but not on method.
type MethodNotAllowedError struct {
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string { return "method not allowed" }

// Router holds the immutable, write-once route table built at App
// construction.
type Router struct {
	routes []*Route
}

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Add registers a route. Patterns using the `:name` alias are normalized to
// `{name}` segments at compile time; insertion order is recorded for
// specificity tie-breaking.
func (rt *Router) Add(method, pattern string, handler Handler, authRequired bool) *Route {
	r := &Route{
		Method:         strings.ToUpper(method),
		Pattern:        pattern,
		Segments:       Compile(pattern),
		Handler:        handler,
		AuthRequired:   authRequired,
		insertionOrder: len(rt.routes),
	}
	rt.routes = append(rt.routes, r)
	return r
}

// Match finds the most specific route for (method, path) It
// returns (route, params, nil) on a hit, (nil, nil, *MethodNotAllowedError)
// when the path matches some route under a different method, or
// (nil, nil, NotFoundError{}) when nothing matches the path at all.
func (rt *Router) Match(method, path string) (*Route, map[string]string, error) {
	reqSegs := segmentsOf(path)

	var best *Route
	var bestParams map[string]string
	pathMatchedMethods := map[string]bool{}

	for _, r := range rt.routes {
		params, ok := matchSegments(r.Segments, reqSegs)
		if !ok {
			continue
		}
		pathMatchedMethods[r.Method] = true
		if r.Method != strings.ToUpper(method) {
			continue
		}
		if best == nil || best.less(r) {
			best = r
			bestParams = params
		}
	}

	if best != nil {
		return best, bestParams, nil
	}
	if len(pathMatchedMethods) > 0 {
		methods := make([]string, 0, len(pathMatchedMethods))
		for m := range pathMatchedMethods {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		return nil, nil, &MethodNotAllowedError{Allowed: methods}
	}
	return nil, nil, NotFoundError{}
}

// matchSegments matches compiled route segments against request path
// segments, : equal length unless the terminal segment is a
// proxy; an empty path segment never matches (segmentsOf already drops
// empty segments, so the request side is pre-filtered).
func matchSegments(route []Segment, req []string) (map[string]string, bool) {
	params := map[string]string{}
	i := 0
	for ; i < len(route); i++ {
		seg := route[i]
		if seg.Kind == SegmentProxy {
			if i > len(req) {
				return nil, false
			}
			params[seg.Name] = strings.Join(req[i:], "/")
			return params, true
		}
		if i >= len(req) {
			return nil, false
		}
		switch seg.Kind {
		case SegmentStatic:
			if req[i] != seg.Literal {
				return nil, false
			}
		case SegmentParam:
			params[seg.Name] = req[i]
		}
	}
	if i != len(req) {
		return nil, false
	}
	return params, true
}

// AllowHeader renders the Allow header value for a set of methods: unique
// upper-case methods, sorted, comma-space joined.
func AllowHeader(methods []string) string {
	seen := map[string]bool{}
	unique := make([]string, 0, len(methods))
	for _, m := range methods {
		up := strings.ToUpper(m)
		if !seen[up] {
			seen[up] = true
			unique = append(unique, up)
		}
	}
	sort.Strings(unique)
	return strings.Join(unique, ", ")
}
