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

// Package canonical implements the Canonicalizer: it converts
// every upstream event shape into a CanonicalRequest, and converts a
// CanonicalResponse back into that same upstream shape.
//
// Header keys are always lower-cased and multi-valued, iterated in stable
// (sorted) order. Cookies are derived from either a dedicated upstream
// cookie list (preferred) or a `cookie` header. Query parameters keep their
// case but carry ordered, possibly-empty values.
package canonical

import (
	"sort"
)

// Request is the immutable-after-normalization canonical request.
type Request struct {
	Method string
	Path   string
	Query  map[string][]string
	Headers map[string][]string
	Cookies map[string]string
	Body    []byte

	// PathParams is populated by the router at match time.
	PathParams map[string]string

	// Invocation-scoped mutable scratch, owned by the pipeline.
	RequestID       string
	TenantID        string
	AuthIdentity    string
	RemainingMS     int64
	MiddlewareTrace []string
}

// Chunk is one piece of a streaming response body.
type Chunk struct {
	Data []byte
	Err  error
}

// ChunkSource is a finite, single-pass lazy sequence of byte chunks (spec
// §3, §4.G). Next returns ok=false once the sequence is exhausted. An
// adapter MUST consume a ChunkSource exactly once.
type ChunkSource interface {
	Next() (chunk []byte, ok bool, err error)
}

// Response is the canonical response value type.
type Response struct {
	Status  int
	Headers map[string][]string
	Cookies map[string]string
	Body    []byte
	Stream  ChunkSource
	IsBase64 bool
}

// HeaderValues returns the (possibly empty) ordered values for a header,
// matched case-insensitively per the canonical lower-case storage.
func (r *Request) HeaderValues(key string) []string {
	if r.Headers == nil {
		return nil
	}
	return r.Headers[lower(key)]
}

// Header returns the first value of a header, or "".
func (r *Request) Header(key string) string {
	vs := r.HeaderValues(key)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// QueryValues returns the ordered values for a query parameter.
func (r *Request) QueryValues(key string) []string {
	if r.Query == nil {
		return nil
	}
	return r.Query[key]
}

// Query1 returns the first value of a query parameter, or "".
func (r *Request) Query1(key string) string {
	vs := r.QueryValues(key)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// SortedHeaderKeys returns the header keys in stable sorted order, used
// anywhere headers must be iterated deterministically.
func (r *Request) SortedHeaderKeys() []string {
	return sortedKeys(r.Headers)
}

// SortedHeaderKeys on Response, same contract.
func (resp *Response) SortedHeaderKeys() []string {
	return sortedKeys(resp.Headers)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetHeader sets (replacing) a single header value.
func (resp *Response) SetHeader(key, value string) {
	if resp.Headers == nil {
		resp.Headers = map[string][]string{}
	}
	resp.Headers[lower(key)] = []string{value}
}

// AddHeader appends a header value, preserving any existing ones.
func (resp *Response) AddHeader(key, value string) {
	if resp.Headers == nil {
		resp.Headers = map[string][]string{}
	}
	k := lower(key)
	resp.Headers[k] = append(resp.Headers[k], value)
}

// GetHeader returns the first value of a response header, or "".
func (resp *Response) GetHeader(key string) string {
	if resp.Headers == nil {
		return ""
	}
	vs := resp.Headers[lower(key)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
