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

import "sort"

// LegacyProxyEvent is the API Gateway REST API v1 / ALB target-group
// payload shape.
type LegacyProxyEvent struct {
	HTTPMethod                      string              `json:"httpMethod"`
	Path                            string              `json:"path"`
	Headers                         map[string]string   `json:"headers"`
	MultiValueHeaders               map[string][]string `json:"multiValueHeaders"`
	QueryStringParameters           map[string]string   `json:"queryStringParameters"`
	MultiValueQueryStringParameters map[string][]string `json:"multiValueQueryStringParameters"`
	Body                            string              `json:"body"`
	IsBase64Encoded                 bool                `json:"isBase64Encoded"`
}

// LegacyProxyResponse is the matching response shape. Cookies are embedded
// in `set-cookie` (first value) plus `multiValueHeaders["set-cookie"]` (all
// values) rather than a dedicated cookie list.
type LegacyProxyResponse struct {
	StatusCode        int                 `json:"statusCode"`
	Headers           map[string]string   `json:"headers"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders"`
	Body              string              `json:"body"`
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
}

// LegacyProxyAdapter adapts the legacy REST API / ALB event shape.
type LegacyProxyAdapter struct{}

func (LegacyProxyAdapter) Name() string { return "legacy-proxy" }

// ToCanonical converts a LegacyProxyEvent into a Request.
func (LegacyProxyAdapter) ToCanonical(ev LegacyProxyEvent) (*Request, error) {
	method, err := NormalizeMethod(ev.HTTPMethod)
	if err != nil {
		return nil, err
	}
	headers := NormalizeHeaders(ev.Headers, ev.MultiValueHeaders)
	query, err := NormalizeQuery("", ev.QueryStringParameters, ev.MultiValueQueryStringParameters)
	if err != nil {
		return nil, err
	}
	body, err := NormalizeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:  method,
		Path:    NormalizePath(ev.Path),
		Query:   query,
		Headers: headers,
		Cookies: NormalizeCookies(nil, headers),
		Body:    body,
	}, nil
}

// FromCanonical converts a Response back into a LegacyProxyResponse,
// merging cookies into `set-cookie`.
func (LegacyProxyAdapter) FromCanonical(resp *Response) (LegacyProxyResponse, error) {
	out := LegacyProxyResponse{
		StatusCode:        resp.Status,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
		IsBase64Encoded:   resp.IsBase64,
	}
	body, err := encodeBody(resp)
	if err != nil {
		return LegacyProxyResponse{}, err
	}
	out.Body = body
	for _, k := range resp.SortedHeaderKeys() {
		vs := resp.Headers[k]
		if len(vs) == 1 {
			out.Headers[k] = vs[0]
		} else if len(vs) > 1 {
			out.MultiValueHeaders[k] = vs
		}
	}
	if len(resp.Cookies) > 0 {
		names := make([]string, 0, len(resp.Cookies))
		for name := range resp.Cookies {
			names = append(names, name)
		}
		sort.Strings(names)
		setCookies := make([]string, 0, len(names))
		for _, name := range names {
			setCookies = append(setCookies, name+"="+resp.Cookies[name])
		}
		out.Headers["set-cookie"] = setCookies[0]
		out.MultiValueHeaders["set-cookie"] = setCookies
	}
	return out, nil
}
