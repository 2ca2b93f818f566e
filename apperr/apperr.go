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

// Package apperr implements AppTheory's closed error taxonomy: a tagged
// variant of well-known error kinds, each mapping to exactly one HTTP-ish
// status code, plus the canonical JSON envelope rendering for them.
//
// The taxonomy is closed on purpose — new error kinds are not meant to be
// invented by handlers. A handler that needs a status code not covered here
// should still pick the closest taxonomy code; anything else collapses to
// Internal at the pipeline boundary (see the `pipeline` package).
package apperr

import "fmt"

// Code is one of the closed set of taxonomy error kinds.
type Code string

const (
	BadRequest       Code = "app.bad_request"
	ValidationFailed Code = "app.validation_failed"
	Unauthorized     Code = "app.unauthorized"
	Forbidden        Code = "app.forbidden"
	NotFound         Code = "app.not_found"
	MethodNotAllowed Code = "app.method_not_allowed"
	Timeout          Code = "app.timeout"
	Conflict         Code = "app.conflict"
	TooLarge         Code = "app.too_large"
	RateLimited      Code = "app.rate_limited"
	Internal         Code = "app.internal"
	Overloaded       Code = "app.overloaded"
)

// statusByCode is the closed code -> status mapping for the taxonomy.
// Anything not present here maps to 500.
var statusByCode = map[Code]int{
	BadRequest:       400,
	ValidationFailed: 400,
	Unauthorized:     401,
	Forbidden:        403,
	NotFound:         404,
	MethodNotAllowed: 405,
	Timeout:          408,
	Conflict:         409,
	TooLarge:         413,
	RateLimited:      429,
	Internal:         500,
	Overloaded:       503,
}

// StatusFor returns the HTTP status for a taxonomy code, defaulting to 500
// for any code outside the closed set (including the empty code).
func StatusFor(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return 500
}

// DefaultMessage returns the default human-readable message for a code when
// a hook raises it without supplying one explicitly.
func DefaultMessage(code Code) string {
	switch code {
	case RateLimited:
		return "rate limited"
	case Overloaded:
		return "overloaded"
	default:
		return "internal error"
	}
}

// Error is a taxonomy error: {code, message, optional request_id, optional
// details}. It also optionally carries response headers to merge (used for
// Allow / Retry-After) and an explicit status override.
type Error struct {
	Code        Code
	Message     string
	RequestID   string
	Details     map[string]any
	Headers     map[string][]string
	TraceID     string
	StatusOverride int // 0 means "use StatusFor(Code)"
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

// Status returns the effective HTTP status for this error.
func (e *Error) Status() int {
	if e.StatusOverride != 0 {
		return e.StatusOverride
	}
	return StatusFor(e.Code)
}

// New constructs a taxonomy error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a taxonomy error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithHeaders returns a copy of e with headers merged in, used for
// Allow/Retry-After style error responses.
func (e *Error) WithHeaders(h map[string][]string) *Error {
	cp := *e
	cp.Headers = h
	return &cp
}

// WithDetails returns a copy of e with details attached.
func (e *Error) WithDetails(d map[string]any) *Error {
	cp := *e
	cp.Details = d
	return &cp
}

// WithRequestID returns a copy of e with the request id attached.
func (e *Error) WithRequestID(id string) *Error {
	cp := *e
	cp.RequestID = id
	return &cp
}

// AsTaxonomy extracts a *Error from a generic error, returning (nil, false)
// for anything not raised through this package — the pipeline boundary maps
// those to Internal instead of letting them escape.
func AsTaxonomy(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	if te, ok := err.(*Error); ok {
		return te, true
	}
	return nil, false
}

// ToTaxonomy maps any error to a taxonomy error: passes *Error through
// unchanged, and wraps anything else as Internal.
func ToTaxonomy(err error) *Error {
	if err == nil {
		return nil
	}
	if te, ok := AsTaxonomy(err); ok {
		return te
	}
	return New(Internal, err.Error())
}
