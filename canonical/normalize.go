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

package canonical

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/theory-cloud/AppTheory/apperr"
)

// NormalizeHeaders lowercases keys and merges single/multi-value maps,
// preferring the multi-value map whenever it is non-empty.
func NormalizeHeaders(single map[string]string, multi map[string][]string) map[string][]string {
	out := map[string][]string{}
	for k, v := range single {
		out[lower(k)] = []string{v}
	}
	if len(multi) > 0 {
		for k, vs := range multi {
			if len(vs) > 0 {
				out[lower(k)] = append([]string(nil), vs...)
			}
		}
	}
	return out
}

// NormalizeCookies extracts cookies from a dedicated cookie-list upstream
// shape, falling back to the `cookie` header if the list is absent or
// empty. Dedicated cookie lists always take precedence.
func NormalizeCookies(cookieList []string, headers map[string][]string) map[string]string {
	if len(cookieList) > 0 {
		return parseCookiePairs(strings.Join(cookieList, "; "))
	}
	if vs := headers["cookie"]; len(vs) > 0 {
		return parseCookiePairs(strings.Join(vs, "; "))
	}
	return map[string]string{}
}

func parseCookiePairs(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !found {
			out[name] = ""
			continue
		}
		// First value wins.
		if _, exists := out[name]; !exists {
			out[name] = strings.TrimSpace(value)
		}
	}
	return out
}

// NormalizeQuery parses query parameters either from a raw query string
// (preferred, when present) or from an already-parsed single/multi map,
// preserving empty-value keys.
func NormalizeQuery(rawQuery string, single map[string]string, multi map[string][]string) (map[string][]string, error) {
	if rawQuery != "" {
		values, err := url.ParseQuery(rawQuery)
		if err != nil {
			return nil, apperr.New(apperr.BadRequest, "malformed query string: "+err.Error())
		}
		out := map[string][]string{}
		for k, vs := range values {
			out[k] = vs
		}
		return out, nil
	}
	out := map[string][]string{}
	for k, v := range single {
		out[k] = []string{v}
	}
	if len(multi) > 0 {
		for k, vs := range multi {
			out[k] = append([]string(nil), vs...)
		}
	}
	return out, nil
}

// NormalizeBody decodes the body if the upstream marked it base64, so the
// canonical body is always raw bytes. Undecodable base64 raises
// app.bad_request.
func NormalizeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, apperr.New(apperr.BadRequest, "invalid base64 body: "+err.Error())
	}
	return decoded, nil
}

// NormalizeMethod upper-cases the HTTP verb, defaulting unsupported blank
// input to an error (the router separately rejects unknown methods by
// simply never matching them).
func NormalizeMethod(m string) (string, error) {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return "", apperr.New(apperr.BadRequest, "missing HTTP method")
	}
	return m, nil
}

// NormalizePath strips the query fragment and defaults to "/".
func NormalizePath(raw string) string {
	path := raw
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Stringify coerces a non-string header/query value via stable
// stringification.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// SortedQueryKeys returns a request's query keys in sorted order.
func SortedQueryKeys(q map[string][]string) []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
