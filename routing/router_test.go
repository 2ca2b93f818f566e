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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpecificityScenario(t *testing.T) {
	rt := New()
	rt.Add("GET", "/a/b", nil, false)
	rt.Add("GET", "/a/{x}", nil, false)
	rt.Add("GET", "/{y+}", nil, false)

	r, params, err := rt.Match("GET", "/a/b")
	require.NoError(t, err)
	require.Equal(t, "/a/b", r.Pattern)
	require.Empty(t, params)

	r, params, err = rt.Match("GET", "/a/c")
	require.NoError(t, err)
	require.Equal(t, "/a/{x}", r.Pattern)
	require.Equal(t, "c", params["x"])

	r, params, err = rt.Match("GET", "/p/q/r")
	require.NoError(t, err)
	require.Equal(t, "/{y+}", r.Pattern)
	require.Equal(t, "p/q/r", params["y"])
}

func TestMethodNotAllowed(t *testing.T) {
	rt := New()
	rt.Add("GET", "/x", nil, false)
	rt.Add("POST", "/x", nil, false)

	_, _, err := rt.Match("DELETE", "/x")
	require.Error(t, err)
	mna, ok := err.(*MethodNotAllowedError)
	require.True(t, ok)
	require.Equal(t, []string{"GET", "POST"}, mna.Allowed)
}

func TestNotFound(t *testing.T) {
	rt := New()
	rt.Add("GET", "/x", nil, false)
	_, _, err := rt.Match("GET", "/y")
	require.Error(t, err)
	_, ok := err.(NotFoundError)
	require.True(t, ok)
}

func TestEmptySegmentNeverMatches(t *testing.T) {
	rt := New()
	rt.Add("GET", "/a/{x}", nil, false)
	// "/a//" splits to ["a"] after trimming (segmentsOf drops empties),
	// so it should NOT match a two-segment pattern.
	_, _, err := rt.Match("GET", "/a//")
	require.Error(t, err)
}

func TestColonAliasForParam(t *testing.T) {
	rt := New()
	rt.Add("GET", "/users/:id", nil, false)
	r, params, err := rt.Match("GET", "/users/42")
	require.NoError(t, err)
	require.Equal(t, "42", params["id"])
	require.Equal(t, "/users/:id", r.Pattern)
}

func TestAllowHeaderDedupesAndSorts(t *testing.T) {
	require.Equal(t, "DELETE, GET, POST", AllowHeader([]string{"post", "GET", "delete", "get"}))
}
