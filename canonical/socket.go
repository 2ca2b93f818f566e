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

// SocketEvent is the API Gateway WebSocket event shape.
type SocketEvent struct {
	RequestContext SocketRequestContext `json:"requestContext"`
	Body           string               `json:"body"`
	IsBase64Encoded bool                `json:"isBase64Encoded"`
}

// SocketRequestContext carries the connection/route identity for a socket
// event.
type SocketRequestContext struct {
	RouteKey     string `json:"routeKey"`
	ConnectionID string `json:"connectionId"`
	DomainName   string `json:"domainName"`
	Stage        string `json:"stage"`
	RequestID    string `json:"requestId"`
	EventType    string `json:"eventType"`
}

// SocketAdapter adapts a WebSocket event into a canonical Request. The
// WebSocketContext capability itself is attached by the `socket` package,
// not here — this adapter only produces the request body.
type SocketAdapter struct{}

func (SocketAdapter) Name() string { return "socket" }

// ToCanonical converts a SocketEvent into a Request.
func (SocketAdapter) ToCanonical(ev SocketEvent) (*Request, error) {
	body, err := NormalizeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:  "SOCKET",
		Path:    "/" + ev.RequestContext.RouteKey,
		Query:   map[string][]string{},
		Headers: map[string][]string{},
		Cookies: map[string]string{},
		Body:    body,
	}, nil
}
