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

// Package middleware implements the Middleware Engine: chain
// composition for both the http-shaped request pipeline and the zero-arg
// event-dispatch shape, plus the timeout middleware — the core's single
// suspension/cancellation boundary.
package middleware

import (
	"github.com/theory-cloud/AppTheory/canonical"
)

// Next is the callable the engine hands to each middleware; calling it runs
// the remainder of the chain (and ultimately the terminal handler) and
// returns its response. Implementations MAY back this with a goroutine —
// the engine only requires the synchronous call/return shape.
type Next func() (*canonical.Response, error)

// HandlerFunc is one http-shaped middleware or terminal handler.
type HandlerFunc func(ctx any, next Next) (*canonical.Response, error)

// Chain composes [m1, m2, …, mn] and a terminal handler into a single
// callable: m1(ctx, -> m2(ctx, -> … -> mn(ctx, -> terminal))).
func Chain(ctx any, mws []HandlerFunc, terminal Next) (*canonical.Response, error) {
	next := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		captured := next
		next = func() (*canonical.Response, error) {
			return mw(ctx, captured)
		}
	}
	return next()
}

// EventNext is the zero-arg continuation for event middleware — the event
// and record are already attached to ctx.
type EventNext func() error

// EventHandlerFunc is one event-shaped middleware or terminal handler.
type EventHandlerFunc func(ctx any, next EventNext) error

// EventChain composes event middleware the same way Chain does, but with
// the zero-arg Next shape used by per-record event dispatch.
func EventChain(ctx any, mws []EventHandlerFunc, terminal EventNext) error {
	next := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		captured := next
		next = func() error {
			return mw(ctx, captured)
		}
	}
	return next()
}
