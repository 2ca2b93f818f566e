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

// Package hooks defines the single-call pluggable gates and sinks the
// tiered pipeline invokes: auth, policy, and observability.
package hooks

import "github.com/theory-cloud/AppTheory/apperr"

// AuthFunc authenticates an invocation and returns a non-blank identity, or
// raises a taxonomy error. Returning an empty/whitespace identity without an
// error is equivalent to raising app.unauthorized; the pipeline
// enforces that equivalence, not this type.
type AuthFunc func(ctx any) (identity string, err error)

// PolicyDecision is the result of a P2 policy_hook call. A non-null decision
// with a non-blank Code short-circuits the pipeline.
type PolicyDecision struct {
	Code    apperr.Code
	Message string
	Headers map[string][]string
}

// PolicyFunc is the P2-only policy gate, called before auth.
type PolicyFunc func(ctx any) (*PolicyDecision, error)

// LogRecord is the structured log record emitted once per terminal response
//.
type LogRecord struct {
	Level     string
	Event     string
	RequestID string
	TenantID  string
	Method    string
	Path      string
	Status    int
	ErrorCode string
}

// MetricRecord is the counter metric emitted once per terminal response
//.
type MetricRecord struct {
	Name  string
	Value float64
	Tags  map[string]string
}

// SpanRecord is the trace span emitted once per terminal response (spec
// §6).
type SpanRecord struct {
	Name       string
	Attributes map[string]any
}

// Observability is the P2-only sink, called exactly once per terminal
// response, after finalization but before the response leaves the pipeline
//.
type Observability interface {
	Log(LogRecord)
	Metric(MetricRecord)
	Span(SpanRecord)
}

// NoopObservability discards every record; used when P2 observability is
// not configured or in tests that don't assert on it.
type NoopObservability struct{}

func (NoopObservability) Log(LogRecord)       {}
func (NoopObservability) Metric(MetricRecord) {}
func (NoopObservability) Span(SpanRecord)     {}
