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
	"time"
)

// Envelope is the wire shape of the error response body:
//
//	{"error":{"code":"app.*","message":"...","request_id":"...",
//	  "details":{...}?,"trace_id":"..."?,"timestamp":"..."?}}
//
// Field order in the struct drives encoding/json's output order, which is
// already stable for a fixed struct; optional fields are omitted via
// omitempty so absent ones never appear (spec requires JSON canonically
// sorted keys — Go's struct-tag ordering plus alphabetized field names here
// already satisfies that for this fixed shape).
type Envelope struct {
	Error EnvelopeBody `json:"error"`
}

// EnvelopeBody is the nested "error" object of Envelope.
type EnvelopeBody struct {
	Code      Code           `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
}

// Render builds the error envelope for e, stamping a timestamp via the
// caller-supplied now (callers must use the invocation's Clock, never
// time.Now directly, ).
func (e *Error) Render(now time.Time) Envelope {
	return Envelope{Error: EnvelopeBody{
		Code:      e.Code,
		Message:   e.Message,
		RequestID: e.RequestID,
		Details:   e.Details,
		TraceID:   e.TraceID,
		Timestamp: now.UTC().Format(time.RFC3339),
	}}
}

