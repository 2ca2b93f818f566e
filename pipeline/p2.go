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
	"strconv"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/hooks"
)

// runPolicyHook implements the P2-only policy gate, inserted
// between P1 steps 5 and 6. It returns short=true when the hook
// short-circuited the pipeline with an error response.
func (p *Pipeline) runPolicyHook(ctx any, req *canonical.Request, origin string) (resp *canonical.Response, code string, short bool) {
	if NormalizeTier(p.Tier) != TierP2 || p.PolicyHook == nil {
		return nil, "", false
	}
	decision, err := p.PolicyHook(ctx)
	if err != nil {
		te := apperr.ToTaxonomy(err).WithRequestID(req.RequestID)
		resp = p.errorResponse(te, ctx)
		p.finalize(resp, req, origin)
		return resp, string(te.Code), true
	}
	if decision == nil || isBlank(string(decision.Code)) {
		return nil, "", false
	}
	message := decision.Message
	if isBlank(message) {
		message = apperr.DefaultMessage(decision.Code)
	}
	te := apperr.New(decision.Code, message).WithRequestID(req.RequestID)
	if decision.Headers != nil {
		te = te.WithHeaders(decision.Headers)
	}
	resp = p.errorResponse(te, ctx)
	for k, vs := range decision.Headers {
		for _, v := range vs {
			resp.AddHeader(k, v)
		}
	}
	p.finalize(resp, req, origin)
	return resp, string(te.Code), true
}

// runP2 implements the observable tier: runs P1, then emits exactly
// one structured log, one counter metric, and one span, all tagged with the
// terminal error code (if any).
func (p *Pipeline) runP2(ctx any, req *canonical.Request) *canonical.Response {
	resp, errorCode := p.runP1(ctx, req)
	p.recordObservability(req, resp, errorCode)
	return resp
}

func (p *Pipeline) recordObservability(req *canonical.Request, resp *canonical.Response, errorCode string) {
	if p.Observability == nil {
		return
	}
	status := resp.Status
	level := "info"
	switch {
	case status >= 500:
		level = "error"
	case status >= 400:
		level = "warn"
	}

	p.Observability.Log(hooks.LogRecord{
		Level:     level,
		Event:     "request.completed",
		RequestID: req.RequestID,
		TenantID:  req.TenantID,
		Method:    req.Method,
		Path:      req.Path,
		Status:    status,
		ErrorCode: errorCode,
	})

	p.Observability.Metric(hooks.MetricRecord{
		Name:  "apptheory.request",
		Value: 1,
		Tags: map[string]string{
			"method":     req.Method,
			"path":       req.Path,
			"status":     strconv.Itoa(status),
			"error_code": errorCode,
			"tenant_id":  req.TenantID,
		},
	})

	p.Observability.Span(hooks.SpanRecord{
		Name: "http " + req.Method + " " + req.Path,
		Attributes: map[string]any{
			"http.method":      req.Method,
			"http.route":       req.Path,
			"http.status_code": status,
			"request.id":       req.RequestID,
			"tenant.id":        req.TenantID,
			"error.code":       errorCode,
		},
	})
}
