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

// Package pipeline implements the Tiered Pipeline: P0 (bare
// routing), P1 (portable: request-id, tenant extraction, CORS, limits), and
// P2 (observable: policy gate + structured log/metric/span per response).
package pipeline

import (
	"strings"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/hooks"
	"github.com/theory-cloud/AppTheory/middleware"
	"github.com/theory-cloud/AppTheory/routing"
)

// Tier is one of the three progressively more invasive behavior levels
//. Blank or unknown tiers normalize to TierP2.
type Tier string

const (
	TierP0 Tier = "p0"
	TierP1 Tier = "p1"
	TierP2 Tier = "p2"
)

// NormalizeTier implements the "unknown or blank tier -> p2".
func NormalizeTier(t Tier) Tier {
	switch t {
	case TierP0, TierP1, TierP2:
		return t
	default:
		return TierP2
	}
}

// ContextFactory builds the per-invocation Context (as `any`, to avoid an
// import cycle with the root apptheory package) for a canonical Request.
type ContextFactory func(req *canonical.Request) any

// Pipeline assembles the canonicalizer/router/middleware/hooks into one of
// the three tiers.
type Pipeline struct {
	Tier Tier

	Router      *routing.Router
	NewContext  ContextFactory
	Middleware  []middleware.HandlerFunc

	MaxRequestBytes  int64
	MaxResponseBytes int64

	AuthHook     hooks.AuthFunc
	PolicyHook   hooks.PolicyFunc
	Observability hooks.Observability

	CORS CORSConfig
}

// New constructs a Pipeline at the given tier.
func New(tier Tier, router *routing.Router, newCtx ContextFactory) *Pipeline {
	return &Pipeline{
		Tier:          NormalizeTier(tier),
		Router:        router,
		NewContext:    newCtx,
		Observability: hooks.NoopObservability{},
	}
}

// Handle runs req through the configured tier and returns the finalized
// canonical Response, never an error — all failure modes are rendered as
// taxonomy error responses.
func (p *Pipeline) Handle(req *canonical.Request) *canonical.Response {
	ctx := p.NewContext(req)

	switch NormalizeTier(p.Tier) {
	case TierP0:
		return p.runP0(ctx, req)
	case TierP1:
		resp, _ := p.runP1(ctx, req)
		return resp
	default:
		return p.runP2(ctx, req)
	}
}

// runP0 implements the bare tier: canonicalize (already done by the
// caller/adapter) -> route -> invoke handler through the middleware chain
// -> normalize response. Taxonomy errors render per §4.D; generic
// exceptions map to Internal.
func (p *Pipeline) runP0(ctx any, req *canonical.Request) *canonical.Response {
	route, params, err := p.Router.Match(req.Method, req.Path)
	if err != nil {
		return p.errorResponse(routingError(err), ctx)
	}
	req.PathParams = params
	if idc, ok := ctx.(routePatternSetter); ok {
		idc.SetRoutePattern(route.Pattern)
	}

	resp, err := p.invoke(ctx, route)
	if err != nil {
		return p.errorResponse(apperr.ToTaxonomy(err), ctx)
	}
	return resp
}

// routePatternSetter lets the pipeline record the matched route pattern on
// the Context for the timeout middleware's per-operation override and for
// observability dimensions.
type routePatternSetter interface {
	SetRoutePattern(string)
}

func (p *Pipeline) invoke(ctx any, route *routing.Route) (*canonical.Response, error) {
	terminal := func() (*canonical.Response, error) {
		return route.Handler(ctx.(routing.HandlerContext))
	}
	return middleware.Chain(ctx, p.Middleware, terminal)
}

// routingError converts a routing-package error into a taxonomy error.
func routingError(err error) *apperr.Error {
	if mna, ok := err.(*routing.MethodNotAllowedError); ok {
		return apperr.New(apperr.MethodNotAllowed, "method not allowed").
			WithHeaders(map[string][]string{"allow": {routing.AllowHeader(mna.Allowed)}})
	}
	return apperr.New(apperr.NotFound, "no route matches path")
}

// errorResponse renders a taxonomy error into a canonical Response.
func (p *Pipeline) errorResponse(te *apperr.Error, ctx any) *canonical.Response {
	if te == nil {
		te = apperr.New(apperr.Internal, "internal error")
	}
	now := nowOf(ctx)
	env := te.Render(now)
	body := mustJSON(env)
	resp := &canonical.Response{
		Status: te.Status(),
		Body:   body,
	}
	resp.SetHeader("content-type", "application/json; charset=utf-8")
	for k, vs := range te.Headers {
		for _, v := range vs {
			resp.AddHeader(k, v)
		}
	}
	return resp
}

// bodyTooLarge reports whether body exceeds max bytes; max <= 0 disables the
// check.
func bodyTooLarge(body []byte, max int64) bool {
	return max > 0 && int64(len(body)) > max
}

func originOf(req *canonical.Request) string {
	return req.Header("origin")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
