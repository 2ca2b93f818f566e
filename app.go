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
	"context"
	"encoding/json"

	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/hooks"
	"github.com/theory-cloud/AppTheory/middleware"
	"github.com/theory-cloud/AppTheory/pipeline"
	"github.com/theory-cloud/AppTheory/routing"
)

// Handler is the user-written business handler signature.
type Handler func(ctx *Context) (*canonical.Response, error)

// App is effectively immutable after construction: routes,
// hooks, middleware, limits, and CORS config are write-once, assembled via
// functional options passed to New.
type App struct {
	router     *routing.Router
	middleware []middleware.HandlerFunc
	pipeline   *pipeline.Pipeline

	clock Clock
	ids   IDSource
}

// Option configures an App at construction time.
type Option func(*App)

// WithClock injects a Clock, overriding the production SystemClock. The
// test harness uses this to install a manual clock for determinism (spec
// §4.C, §4.L).
func WithClock(c Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithIDSource injects an IDSource, overriding the production UUID source.
func WithIDSource(ids IDSource) Option {
	return func(a *App) { a.ids = ids }
}

// WithTier sets the pipeline tier. Defaults to p2.
func WithTier(tier pipeline.Tier) Option {
	return func(a *App) { a.pipeline.Tier = pipeline.NormalizeTier(tier) }
}

// WithMiddleware appends global middleware to the chain every route runs
// through.
func WithMiddleware(mws ...middleware.HandlerFunc) Option {
	return func(a *App) { a.middleware = append(a.middleware, mws...) }
}

// WithMaxRequestBytes sets the P1/P2 request body size limit.
func WithMaxRequestBytes(n int64) Option {
	return func(a *App) { a.pipeline.MaxRequestBytes = n }
}

// WithMaxResponseBytes sets the P1/P2 response body size limit.
func WithMaxResponseBytes(n int64) Option {
	return func(a *App) { a.pipeline.MaxResponseBytes = n }
}

// WithAuthHook installs the auth gate.
func WithAuthHook(fn func(ctx *Context) (string, error)) Option {
	return func(a *App) {
		a.pipeline.AuthHook = func(raw any) (string, error) { return fn(raw.(*Context)) }
	}
}

// WithPolicyHook installs the P2 policy gate.
func WithPolicyHook(fn func(ctx *Context) (*hooks.PolicyDecision, error)) Option {
	return func(a *App) {
		a.pipeline.PolicyHook = func(raw any) (*hooks.PolicyDecision, error) { return fn(raw.(*Context)) }
	}
}

// WithObservability installs the P2 log/metric/span sink.
func WithObservability(obs hooks.Observability) Option {
	return func(a *App) { a.pipeline.Observability = obs }
}

// WithCORS configures the CORS policy.
func WithCORS(cfg pipeline.CORSConfig) Option {
	return func(a *App) { a.pipeline.CORS = cfg }
}

// New constructs an App. The router and pipeline are built once, here;
// nothing about route registration or hook wiring may change after
// construction.
func New(opts ...Option) *App {
	router := routing.New()
	a := &App{
		router: router,
		clock:  SystemClock(),
		ids:    UUIDIDSource(),
	}
	a.pipeline = pipeline.New(pipeline.TierP2, router, a.newContext)
	for _, opt := range opts {
		opt(a)
	}
	a.pipeline.Middleware = a.middleware
	return a
}

// newContext builds the per-invocation Context; it is passed to the
// pipeline as a pipeline.ContextFactory.
func (a *App) newContext(req *canonical.Request) any {
	return NewContext(context.Background(), req, a.clock, a.ids)
}

// register compiles and adds one route.
func (a *App) register(method, pattern string, h Handler, authRequired bool) {
	a.router.Add(method, pattern, func(raw routing.HandlerContext) (*canonical.Response, error) {
		return h(raw.(*Context))
	}, authRequired)
}

// GET registers a GET route.
func (a *App) GET(pattern string, h Handler) { a.register("GET", pattern, h, false) }

// POST registers a POST route.
func (a *App) POST(pattern string, h Handler) { a.register("POST", pattern, h, false) }

// PUT registers a PUT route.
func (a *App) PUT(pattern string, h Handler) { a.register("PUT", pattern, h, false) }

// PATCH registers a PATCH route.
func (a *App) PATCH(pattern string, h Handler) { a.register("PATCH", pattern, h, false) }

// DELETE registers a DELETE route.
func (a *App) DELETE(pattern string, h Handler) { a.register("DELETE", pattern, h, false) }

// Handle registers a route for an arbitrary method, optionally requiring
// auth.
func (a *App) Handle(method, pattern string, h Handler, authRequired bool) {
	a.register(method, pattern, h, authRequired)
}

// Serve runs req through the configured tier pipeline and returns the
// finalized canonical Response.
func (a *App) Serve(req *canonical.Request) *canonical.Response {
	return a.pipeline.Handle(req)
}

// Pipeline exposes the underlying pipeline.Pipeline for packages (dispatch,
// socket) that need lower-level access than Serve provides.
func (a *App) Pipeline() *pipeline.Pipeline { return a.pipeline }

// Router exposes the underlying router for read-only inspection (e.g. by
// `dispatch` to build an independent event route table) — it is never
// mutated after New returns.
func (a *App) Router() *routing.Router { return a.router }

// JSON builds a canonical.Response with a JSON-encoded body and the
// standard content-type, mirroring router.Context.JSON's convenience.
func JSON(status int, v any) (*canonical.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	resp := &canonical.Response{Status: status, Body: body}
	resp.SetHeader("content-type", "application/json; charset=utf-8")
	return resp, nil
}

// Text builds a canonical.Response with a plain-text body.
func Text(status int, body string) *canonical.Response {
	resp := &canonical.Response{Status: status, Body: []byte(body)}
	resp.SetHeader("content-type", "text/plain; charset=utf-8")
	return resp
}
