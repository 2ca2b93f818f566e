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

// Package apptheory is the portable application runtime's root package: it
// hosts the per-invocation Context carrier and its injectable Clock/IDSource
// abstractions, and the App type that assembles the tiered
// pipeline from the rest of the packages.
//
// Handlers and middleware MUST obtain "now" and "new id" through the
// Context, never by calling time.Now or uuid.New directly — that is how the
// test harness enforces determinism.
package apptheory

import (
	"context"
	"time"

	"github.com/theory-cloud/AppTheory/canonical"
)

// Clock is the injectable time source.
type Clock interface {
	Now() time.Time
}

// IDSource is the injectable id source.
type IDSource interface {
	NewID() string
}

// systemClock is the production Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the production wall-clock Clock.
func SystemClock() Clock { return systemClock{} }

// Context carries one invocation's request, matched route params,
// invocation scratch, and the time/id sources middleware and handlers must
// use instead of reaching for globals.
type Context struct {
	// Std is the standard context.Context for cancellation/deadline
	// propagation, populated by the timeout middleware.
	Std context.Context

	Req *canonical.Request

	clock    Clock
	ids      IDSource

	// scratch is free-form per-invocation key/value storage for
	// middleware and handlers.
	scratch map[string]any

	// Socket is non-nil only for socket-gateway invocations.
	Socket any
}

// NewContext constructs a Context for one invocation.
func NewContext(std context.Context, req *canonical.Request, clock Clock, ids IDSource) *Context {
	if clock == nil {
		clock = SystemClock()
	}
	return &Context{Std: std, Req: req, clock: clock, ids: ids, scratch: map[string]any{}}
}

// StdContext returns the standard context.Context, satisfying
// middleware.StdContextCarrier.
func (c *Context) StdContext() context.Context { return c.Std }

// SetStdContext installs a new standard context.Context, satisfying
// middleware.StdContextCarrier. The timeout middleware uses this to bind a
// deadline for the downstream call.
func (c *Context) SetStdContext(std context.Context) { c.Std = std }

// TenantID returns the invocation's tenant id, satisfying
// middleware.Budgeter.
func (c *Context) TenantID() string { return c.Req.TenantID }

// OperationName returns the matched route pattern, used as the timeout
// middleware's per-operation override key.
func (c *Context) OperationName() string {
	if v, ok := c.Get("route_pattern"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Request returns the invocation's canonical request, satisfying
// routing.HandlerContext.
func (c *Context) Request() *canonical.Request { return c.Req }

// Now returns the invocation's current time via the injected Clock.
func (c *Context) Now() time.Time { return c.clock.Now() }

// NewID mints a new id via the injected IDSource.
func (c *Context) NewID() string {
	if c.ids == nil {
		return ""
	}
	return c.ids.NewID()
}

// Set stores a scratch value under key.
func (c *Context) Set(key string, value any) {
	if c.scratch == nil {
		c.scratch = map[string]any{}
	}
	c.scratch[key] = value
}

// Get retrieves a scratch value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.scratch[key]
	return v, ok
}

// AppendTrace appends a middleware trace marker.
func (c *Context) AppendTrace(marker string) {
	c.Req.MiddlewareTrace = append(c.Req.MiddlewareTrace, marker)
}

// RemainingMS returns the invocation's remaining time budget, or 0 if
// unbounded.
func (c *Context) RemainingMS() int64 {
	return c.Req.RemainingMS
}

// SetRequestID satisfies pipeline.requestIDSetter.
func (c *Context) SetRequestID(id string) { c.Req.RequestID = id }

// SetTenantID satisfies pipeline.tenantIDSetter.
func (c *Context) SetTenantID(id string) { c.Req.TenantID = id }

// SetAuthIdentity satisfies pipeline.authIdentitySetter.
func (c *Context) SetAuthIdentity(identity string) { c.Req.AuthIdentity = identity }

// SetRoutePattern satisfies pipeline.routePatternSetter.
func (c *Context) SetRoutePattern(pattern string) { c.Set("route_pattern", pattern) }

// RoutePattern returns the matched route pattern, or "" before routing.
func (c *Context) RoutePattern() string { return c.OperationName() }
