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

package pipeline

import (
	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
)

// requestIDSetter lets the pipeline write the minted/forwarded request id
// onto the Context.
type requestIDSetter interface {
	SetRequestID(string)
}

// tenantIDSetter lets the pipeline write the extracted tenant id.
type tenantIDSetter interface {
	SetTenantID(string)
}

// authIdentitySetter lets the pipeline write the authenticated identity.
type authIdentitySetter interface {
	SetAuthIdentity(string)
}

// idMinter exposes the invocation's id source for minting a request id when
// none was supplied.
type idMinter interface {
	NewID() string
}

// runP1 implements the P1 tier. It returns the finalized response
// and, when a terminal error was produced, the taxonomy code for
// observability (used by runP2); code is "" on success and for a CORS
// preflight, which never counts as an error.
func (p *Pipeline) runP1(ctx any, req *canonical.Request) (*canonical.Response, string) {
	// Step 1: request id.
	requestID := req.Header("x-request-id")
	if isBlank(requestID) {
		if m, ok := ctx.(idMinter); ok {
			requestID = m.NewID()
		}
	}
	req.RequestID = requestID
	if s, ok := ctx.(requestIDSetter); ok {
		s.SetRequestID(requestID)
	}

	// Step 2: tenant id.
	tenantID := req.Header("x-tenant-id")
	if isBlank(tenantID) {
		tenantID = req.Query1("tenant")
	}
	req.TenantID = tenantID
	if s, ok := ctx.(tenantIDSetter); ok {
		s.SetTenantID(tenantID)
	}

	// Step 3: trace markers.
	req.MiddlewareTrace = append(req.MiddlewareTrace, "request_id", "recovery", "logging")
	origin := originOf(req)
	if !isBlank(origin) {
		req.MiddlewareTrace = append(req.MiddlewareTrace, "cors")
	}

	// Step 4: CORS preflight short-circuit, before routing/policy/auth.
	if req.Method == "OPTIONS" {
		if acrm := req.Header("access-control-request-method"); !isBlank(acrm) {
			resp := &canonical.Response{Status: 204, Headers: map[string][]string{}}
			resp.SetHeader("access-control-allow-methods", acrm)
			p.finalize(resp, req, origin)
			return resp, ""
		}
	}

	// Step 5: request-body size limit.
	if bodyTooLarge(req.Body, p.MaxRequestBytes) {
		te := apperr.New(apperr.TooLarge, "request body exceeds limit").WithRequestID(requestID)
		resp := p.errorResponse(te, ctx)
		p.finalize(resp, req, origin)
		return resp, string(te.Code)
	}

	// P2 inserts the policy hook here, between steps 5 and 6.
	if hookResp, code, short := p.runPolicyHook(ctx, req, origin); short {
		return hookResp, code
	}

	// Step 6: route.
	route, params, err := p.Router.Match(req.Method, req.Path)
	if err != nil {
		te := routingError(err).WithRequestID(requestID)
		resp := p.errorResponse(te, ctx)
		p.finalize(resp, req, origin)
		return resp, string(te.Code)
	}
	req.PathParams = params
	if s, ok := ctx.(routePatternSetter); ok {
		s.SetRoutePattern(route.Pattern)
	}

	if route.AuthRequired {
		req.MiddlewareTrace = append(req.MiddlewareTrace, "auth")
		if p.AuthHook == nil {
			te := apperr.New(apperr.Unauthorized, "no auth hook configured").WithRequestID(requestID)
			resp := p.errorResponse(te, ctx)
			p.finalize(resp, req, origin)
			return resp, string(te.Code)
		}
		identity, authErr := p.callAuthHook(ctx)
		if authErr != nil {
			te := apperr.ToTaxonomy(authErr).WithRequestID(requestID)
			resp := p.errorResponse(te, ctx)
			p.finalize(resp, req, origin)
			return resp, string(te.Code)
		}
		req.AuthIdentity = identity
		if s, ok := ctx.(authIdentitySetter); ok {
			s.SetAuthIdentity(identity)
		}
	}
	req.MiddlewareTrace = append(req.MiddlewareTrace, "handler")

	// Step 7: middleware chain + handler.
	resp, err := p.invoke(ctx, route)
	if err != nil {
		te := apperr.ToTaxonomy(err).WithRequestID(requestID)
		resp = p.errorResponse(te, ctx)
		p.finalize(resp, req, origin)
		return resp, string(te.Code)
	}

	// Step 8: response-body size limit (skipped for streaming responses).
	if resp.Stream == nil && bodyTooLarge(resp.Body, p.MaxResponseBytes) {
		te := apperr.New(apperr.TooLarge, "response body exceeds limit").WithRequestID(requestID)
		resp = p.errorResponse(te, ctx)
		p.finalize(resp, req, origin)
		return resp, string(te.Code)
	}

	// Step 9: finalize.
	p.finalize(resp, req, origin)
	return resp, ""
}

// callAuthHook invokes the auth hook and applies the "empty
// identity is equivalent to unauthorized" rule. An error from the hook is
// returned unchanged; runP1 maps a non-taxonomy error to Internal.
func (p *Pipeline) callAuthHook(ctx any) (identity string, err error) {
	identity, err = p.AuthHook(ctx)
	if err != nil {
		return "", err
	}
	if isBlank(identity) {
		return "", apperr.New(apperr.Unauthorized, "empty auth identity")
	}
	return identity, nil
}

// finalize merges the request id header and applies CORS // step 9 / §9 (gated semantics: allowed_origins=nil means allow-all).
func (p *Pipeline) finalize(resp *canonical.Response, req *canonical.Request, origin string) {
	if resp.Headers == nil {
		resp.Headers = map[string][]string{}
	}
	resp.SetHeader("x-request-id", req.RequestID)
	if !isBlank(origin) && p.CORS.allows(origin) {
		resp.SetHeader("access-control-allow-origin", p.CORS.allowOriginValue(origin))
		varyAdd(resp, "origin")
		if p.CORS.Credentials {
			resp.SetHeader("access-control-allow-credentials", "true")
		}
		if len(p.CORS.AllowedHeaders) > 0 {
			resp.SetHeader("access-control-allow-headers", joinComma(p.CORS.AllowedHeaders))
		}
	}
}
