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

// Package socket implements the Socket Gateway subsystem: a
// WebSocketContext capability attached to the invocation Context, a
// management-client factory abstraction (production: the cloud SDK; test:
// an in-memory recorder), and exact route-key routing.
package socket

import (
	"context"
	"encoding/json"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/middleware"
	"github.com/theory-cloud/AppTheory/sanitize"

	apptheory "github.com/theory-cloud/AppTheory"
)

// ManagementClient sends data to one connected client. PostToConnection
// mirrors the cloud API Gateway Management API's single outbound-send
// operation.
type ManagementClient interface {
	PostToConnection(ctx context.Context, connectionID string, data []byte) error
}

// ClientFactory lazily builds a ManagementClient scoped to a management
// endpoint.
type ClientFactory func(endpoint string) (ManagementClient, error)

// Capability is the WebSocketContext attached to an invocation's Context
// for socket-sourced requests.
type Capability struct {
	ConnectionID       string
	RouteKey           string
	EventType          string
	DomainName         string
	Stage              string
	ManagementEndpoint string

	factory ClientFactory
	client  ManagementClient
}

// NewCapability builds a Capability from a socket event's request context.
func NewCapability(rc canonical.SocketRequestContext, factory ClientFactory) *Capability {
	return &Capability{
		ConnectionID:       rc.ConnectionID,
		RouteKey:           rc.RouteKey,
		EventType:          rc.EventType,
		DomainName:         rc.DomainName,
		Stage:              rc.Stage,
		ManagementEndpoint: sanitize.ManagementEndpoint(rc.DomainName, rc.Stage),
		factory:            factory,
	}
}

// Client lazily instantiates the management client for this capability's
// endpoint; once built it is reused for the life of the invocation.
func (c *Capability) Client() (ManagementClient, error) {
	if c.client != nil {
		return c.client, nil
	}
	if c.factory == nil {
		return nil, apperr.New(apperr.Internal, "no management client factory configured")
	}
	client, err := c.factory(c.ManagementEndpoint)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "failed to build management client: "+err.Error())
	}
	c.client = client
	return client, nil
}

// Send posts raw bytes to this connection.
func (c *Capability) Send(ctx context.Context, data []byte) error {
	client, err := c.Client()
	if err != nil {
		return err
	}
	return client.PostToConnection(ctx, c.ConnectionID, data)
}

// SendJSON serializes v with canonical (sorted) keys — encoding/json
// already sorts map keys on marshal, which is what gives this its
// determinism — and posts it to this connection.
func (c *Capability) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperr.New(apperr.Internal, "failed to marshal socket message: "+err.Error())
	}
	return c.Send(ctx, data)
}

// Handler is a socket route's terminal callable.
type Handler func(ctx *apptheory.Context) (any, error)

// Router holds the route-key table for socket-sourced invocations,
// independent of the HTTP router.
type Router struct {
	routes map[string]Handler

	Middleware []middleware.EventHandlerFunc

	Clock   apptheory.Clock
	IDs     apptheory.IDSource
	Factory ClientFactory
}

// NewRouter constructs an empty socket Router.
func NewRouter(factory ClientFactory) *Router {
	return &Router{
		routes:  map[string]Handler{},
		Clock:   apptheory.SystemClock(),
		IDs:     apptheory.UUIDIDSource(),
		Factory: factory,
	}
}

// Handle registers a handler for an exact route_key (conventionally
// "$connect", "$disconnect", "$default", or an application-defined key).
func (r *Router) Handle(routeKey string, h Handler) { r.routes[routeKey] = h }

// Dispatch adapts a socket event, attaches its WebSocketContext capability,
// and invokes the matching route handler through the event middleware
// chain.
func (r *Router) Dispatch(ev canonical.SocketEvent) (any, error) {
	req, err := canonical.SocketAdapter{}.ToCanonical(ev)
	if err != nil {
		return nil, err
	}

	h, ok := r.routes[ev.RequestContext.RouteKey]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "no handler registered for route_key %q", ev.RequestContext.RouteKey)
	}

	ctx := apptheory.NewContext(context.Background(), req, r.Clock, r.IDs)
	ctx.Socket = NewCapability(ev.RequestContext, r.Factory)

	var result any
	var herr error
	terminal := func() error {
		result, herr = h(ctx)
		return herr
	}
	if err := middleware.EventChain(ctx, r.Middleware, terminal); err != nil {
		return nil, err
	}
	return result, herr
}
