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

package apptheory

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/hooks"
	"github.com/theory-cloud/AppTheory/pipeline"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return "id-" + strconv.Itoa(s.n)
}

func newTestRequest(method, path string) *canonical.Request {
	return &canonical.Request{
		Method:  method,
		Path:    path,
		Headers: map[string][]string{},
		Query:   map[string][]string{},
	}
}

func TestAppP0PlainRoute(t *testing.T) {
	app := New(WithTier(pipeline.TierP0))
	app.GET("/ping", func(ctx *Context) (*canonical.Response, error) {
		return Text(200, "pong"), nil
	})

	resp := app.Serve(newTestRequest("GET", "/ping"))
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "pong", string(resp.Body))
	// P0 never mints a request id or applies CORS.
	assert.Empty(t, resp.GetHeader("x-request-id"))
}

func TestAppP1RequestIDAndRouting(t *testing.T) {
	app := New(WithTier(pipeline.TierP1), WithIDSource(&seqIDs{}))
	app.GET("/widgets/{id}", func(ctx *Context) (*canonical.Response, error) {
		return JSON(200, map[string]string{"id": ctx.Req.PathParams["id"]})
	})

	resp := app.Serve(newTestRequest("GET", "/widgets/42"))
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "id-1", resp.GetHeader("x-request-id"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, "42", body["id"])
}

func TestAppP1CORSPreflight(t *testing.T) {
	app := New(WithTier(pipeline.TierP1))
	app.GET("/widgets", func(ctx *Context) (*canonical.Response, error) {
		return Text(200, "ok"), nil
	})

	req := newTestRequest("OPTIONS", "/widgets")
	req.Headers["origin"] = []string{"https://example.com"}
	req.Headers["access-control-request-method"] = []string{"GET"}

	resp := app.Serve(req)
	assert.Equal(t, 204, resp.Status)
	assert.Equal(t, "GET", resp.GetHeader("access-control-allow-methods"))
	assert.Equal(t, "https://example.com", resp.GetHeader("access-control-allow-origin"))
}

func TestAppP1NotFound(t *testing.T) {
	app := New(WithTier(pipeline.TierP1))

	resp := app.Serve(newTestRequest("GET", "/missing"))
	assert.Equal(t, 404, resp.Status)

	var env apperr.Envelope
	require.NoError(t, json.Unmarshal(resp.Body, &env))
	assert.Equal(t, apperr.NotFound, env.Error.Code)
}

func TestAppP1MethodNotAllowed(t *testing.T) {
	app := New(WithTier(pipeline.TierP1))
	app.GET("/widgets", func(ctx *Context) (*canonical.Response, error) {
		return Text(200, "ok"), nil
	})

	resp := app.Serve(newTestRequest("POST", "/widgets"))
	assert.Equal(t, 405, resp.Status)
	assert.Equal(t, "GET", resp.GetHeader("allow"))
}

type recordingObservability struct {
	logs    []hooks.LogRecord
	metrics []hooks.MetricRecord
	spans   []hooks.SpanRecord
}

func (r *recordingObservability) Log(l hooks.LogRecord)       { r.logs = append(r.logs, l) }
func (r *recordingObservability) Metric(m hooks.MetricRecord) { r.metrics = append(r.metrics, m) }
func (r *recordingObservability) Span(s hooks.SpanRecord)     { r.spans = append(r.spans, s) }

func TestAppP2PolicyHookDeniesAndEmitsObservability(t *testing.T) {
	obs := &recordingObservability{}
	app := New(
		WithObservability(obs),
		WithPolicyHook(func(ctx *Context) (*hooks.PolicyDecision, error) {
			return &hooks.PolicyDecision{Code: apperr.RateLimited}, nil
		}),
	)
	app.GET("/widgets", func(ctx *Context) (*canonical.Response, error) {
		t.Fatal("handler must not run once policy denies")
		return nil, nil
	})

	resp := app.Serve(newTestRequest("GET", "/widgets"))
	assert.Equal(t, apperr.StatusFor(apperr.RateLimited), resp.Status)

	require.Len(t, obs.logs, 1)
	assert.Equal(t, "request.completed", obs.logs[0].Event)
	assert.Equal(t, string(apperr.RateLimited), obs.logs[0].ErrorCode)
	require.Len(t, obs.metrics, 1)
	require.Len(t, obs.spans, 1)
}

func TestAppP2AuthRequiredRoute(t *testing.T) {
	app := New(
		WithAuthHook(func(ctx *Context) (string, error) {
			if ctx.Req.Header("authorization") == "" {
				return "", apperr.New(apperr.Unauthorized, "missing credentials")
			}
			return "user-1", nil
		}),
	)
	app.Handle("GET", "/secret", func(ctx *Context) (*canonical.Response, error) {
		return JSON(200, map[string]string{"identity": ctx.Req.AuthIdentity})
	}, true)

	unauth := app.Serve(newTestRequest("GET", "/secret"))
	assert.Equal(t, 401, unauth.Status)

	authedReq := newTestRequest("GET", "/secret")
	authedReq.Headers["authorization"] = []string{"Bearer x"}
	authed := app.Serve(authedReq)
	require.Equal(t, 200, authed.Status)

	var body map[string]string
	require.NoError(t, json.Unmarshal(authed.Body, &body))
	assert.Equal(t, "user-1", body["identity"])
}

func TestAppClockAndIDInjection(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	app := New(WithClock(fixedClock{at: at}), WithTier(pipeline.TierP0))
	var seenTime time.Time
	app.GET("/now", func(ctx *Context) (*canonical.Response, error) {
		seenTime = ctx.Now()
		return Text(200, ""), nil
	})
	app.Serve(newTestRequest("GET", "/now"))
	assert.True(t, seenTime.Equal(at))
}
