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
	"sort"
	"strings"

	"github.com/theory-cloud/AppTheory/canonical"
)

// CORSConfig is the pipeline's CORS policy.
type CORSConfig struct {
	AllowedOrigins []string // nil = allow all
	AllowedHeaders []string
	Credentials    bool
}

// allows reports whether origin is permitted by this CORS policy.
func (c CORSConfig) allows(origin string) bool {
	if c.AllowedOrigins == nil {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// allowOriginValue returns the value to echo back in
// access-control-allow-origin: the literal origin, even when the
// configuration uses "*", since credentialed responses cannot use a
// wildcard value.
func (c CORSConfig) allowOriginValue(origin string) string {
	return origin
}

func joinComma(vs []string) string {
	return strings.Join(vs, ", ")
}

// varyAdd appends a value to the response's Vary header, de-duplicated and
// sorted.
func varyAdd(resp *canonical.Response, value string) {
	existing := resp.GetHeader("vary")
	set := map[string]bool{}
	if existing != "" {
		for _, v := range strings.Split(existing, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				set[strings.ToLower(v)] = true
			}
		}
	}
	set[strings.ToLower(value)] = true
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	resp.SetHeader("vary", strings.Join(values, ", "))
}
