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

package apperr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{BadRequest, 400},
		{ValidationFailed, 400},
		{Unauthorized, 401},
		{Forbidden, 403},
		{NotFound, 404},
		{MethodNotAllowed, 405},
		{Timeout, 408},
		{Conflict, 409},
		{TooLarge, 413},
		{RateLimited, 429},
		{Internal, 500},
		{Overloaded, 503},
		{Code("app.unknown"), 500},
		{Code(""), 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, StatusFor(tc.code), "code=%s", tc.code)
	}
}

func TestDefaultMessage(t *testing.T) {
	assert.Equal(t, "rate limited", DefaultMessage(RateLimited))
	assert.Equal(t, "overloaded", DefaultMessage(Overloaded))
	assert.Equal(t, "internal error", DefaultMessage(BadRequest))
}

func TestErrorStatusOverride(t *testing.T) {
	e := New(Internal, "boom")
	require.Equal(t, 500, e.Status())

	e.StatusOverride = 599
	require.Equal(t, 599, e.Status())
}

func TestToTaxonomyWrapsGenericErrors(t *testing.T) {
	generic := assertError("disk on fire")
	te := ToTaxonomy(generic)
	require.Equal(t, Internal, te.Code)
	require.Equal(t, "disk on fire", te.Message)
}

func TestToTaxonomyPassesThroughAppError(t *testing.T) {
	orig := New(Conflict, "already exists")
	te := ToTaxonomy(orig)
	require.Same(t, orig, te)
}

func TestRenderEnvelope(t *testing.T) {
	e := New(RateLimited, "too fast").WithRequestID("req_1").WithDetails(map[string]any{"retry": true})
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	env := e.Render(now)

	require.Equal(t, RateLimited, env.Error.Code)
	require.Equal(t, "too fast", env.Error.Message)
	require.Equal(t, "req_1", env.Error.RequestID)
	require.Equal(t, "2026-07-30T12:00:00Z", env.Error.Timestamp)
	require.Equal(t, map[string]any{"retry": true}, env.Error.Details)
}

type simpleErr string

func (s simpleErr) Error() string { return string(s) }

func assertError(msg string) error { return simpleErr(msg) }
