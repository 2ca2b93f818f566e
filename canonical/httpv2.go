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

import "strings"

// HTTPV2Event is the API Gateway HTTP API v2 / Lambda Function URL payload
// shape.
type HTTPV2Event struct {
	Version               string              `json:"version"`
	RouteKey               string              `json:"routeKey"`
	RawPath                string              `json:"rawPath"`
	RawQueryString         string              `json:"rawQueryString"`
	Cookies                []string            `json:"cookies"`
	Headers                map[string]string   `json:"headers"`
	QueryStringParameters  map[string]string   `json:"queryStringParameters"`
	RequestContext         httpV2RequestContext `json:"requestContext"`
	Body                   string              `json:"body"`
	IsBase64Encoded        bool                `json:"isBase64Encoded"`
}

type httpV2RequestContext struct {
	HTTP httpV2HTTP `json:"http"`
}

type httpV2HTTP struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// HTTPV2Response is the v2 proxy response shape.
type HTTPV2Response struct {
	StatusCode      int                 `json:"statusCode"`
	Headers         map[string]string   `json:"headers"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders"`
	Body            string              `json:"body"`
	IsBase64Encoded bool                `json:"isBase64Encoded"`
	Cookies         []string            `json:"cookies"`
}

// HTTPV2Adapter adapts API Gateway HTTP API v2 payloads.
type HTTPV2Adapter struct{}

func (HTTPV2Adapter) Name() string { return "http-v2" }

// ToCanonical converts an HTTPV2Event into a Request. Events that carry no
// requestContext.http (the "v2 alt" shape, selected only by a top-level
// routeKey) derive method and path from routeKey's "METHOD /path" form
// instead.
func (HTTPV2Adapter) ToCanonical(ev HTTPV2Event) (*Request, error) {
	rawMethod, rawPath := ev.RequestContext.HTTP.Method, ev.RawPath
	if rawMethod == "" && ev.RouteKey != "" {
		rawMethod, rawPath = splitRouteKey(ev.RouteKey)
	}
	method, err := NormalizeMethod(rawMethod)
	if err != nil {
		return nil, err
	}
	headers := NormalizeHeaders(ev.Headers, nil)
	query, err := NormalizeQuery(ev.RawQueryString, ev.QueryStringParameters, nil)
	if err != nil {
		return nil, err
	}
	body, err := NormalizeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:  method,
		Path:    NormalizePath(rawPath),
		Query:   query,
		Headers: headers,
		Cookies: NormalizeCookies(ev.Cookies, headers),
		Body:    body,
	}, nil
}

// splitRouteKey parses the "METHOD /path" convention used by the v2 alt
// shape's top-level routeKey.
func splitRouteKey(routeKey string) (method, path string) {
	parts := strings.SplitN(routeKey, " ", 2)
	if len(parts) != 2 {
		return "", routeKey
	}
	return parts[0], parts[1]
}

// FromCanonical converts a Response back into an HTTPV2Response, preferring
// multi-value headers whenever a header has more than one value.
func (HTTPV2Adapter) FromCanonical(resp *Response) (HTTPV2Response, error) {
	out := HTTPV2Response{
		StatusCode:      resp.Status,
		Headers:         map[string]string{},
		MultiValueHeaders: map[string][]string{},
		IsBase64Encoded: resp.IsBase64,
	}
	body, err := encodeBody(resp)
	if err != nil {
		return HTTPV2Response{}, err
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
	for name, value := range resp.Cookies {
		out.Cookies = append(out.Cookies, name+"="+value)
	}
	return out, nil
}

// FunctionURLAdapter behaves like HTTPV2Adapter but joins response headers
// with commas into a single map on the way out.
type FunctionURLAdapter struct {
	HTTPV2Adapter
}

func (FunctionURLAdapter) Name() string { return "function-url" }

// FromCanonical comma-joins multi-value headers into a single map.
func (FunctionURLAdapter) FromCanonical(resp *Response) (map[string]any, error) {
	body, err := encodeBody(resp)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	for _, k := range resp.SortedHeaderKeys() {
		headers[k] = strings.Join(resp.Headers[k], ", ")
	}
	out := map[string]any{
		"statusCode":      resp.Status,
		"headers":         headers,
		"body":            body,
		"isBase64Encoded": resp.IsBase64,
	}
	if len(resp.Cookies) > 0 {
		cookies := make([]string, 0, len(resp.Cookies))
		for name, value := range resp.Cookies {
			cookies = append(cookies, name+"="+value)
		}
		out["cookies"] = cookies
	}
	return out, nil
}

func encodeBody(resp *Response) (string, error) {
	if resp.IsBase64 {
		return base64Encode(resp.Body), nil
	}
	return string(resp.Body), nil
}
