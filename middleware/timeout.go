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

package middleware

import (
	"context"
	"time"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
)

// Budgeter is implemented by the pipeline's Context to expose the fields
// the timeout middleware needs without importing the root package (which
// would create an import cycle).
type Budgeter interface {
	RemainingMS() int64
	TenantID() string
	OperationName() string
}

// StdContextCarrier lets the timeout middleware install a deadline-bound
// context.Context for the duration of the downstream call, the way
// router/middleware/timeout swaps *http.Request's context.
type StdContextCarrier interface {
	StdContext() context.Context
	SetStdContext(context.Context)
}

// TimeoutOptions configures NewTimeout.
type TimeoutOptions struct {
	Default            time.Duration
	TenantOverrides    map[string]time.Duration
	OperationOverrides map[string]time.Duration
	Message            string
}

// NewTimeout returns the timeout middleware: it computes the
// effective budget, and — if positive — runs the downstream chain on a
// separate goroutine with a deadline-bound context. Crossing the deadline
// raises app.timeout; the downstream's eventual completion, if any, is
// discarded (its effects must not be observable after the deadline).
func NewTimeout(opts TimeoutOptions) HandlerFunc {
	if opts.Message == "" {
		opts.Message = "request timed out"
	}
	return func(ctx any, next Next) (*canonical.Response, error) {
		budget := effectiveBudget(ctx, opts)
		if budget <= 0 {
			return next()
		}

		var cancel context.CancelFunc
		if carrier, ok := ctx.(StdContextCarrier); ok {
			parent := carrier.StdContext()
			if parent == nil {
				parent = context.Background()
			}
			var cctx context.Context
			cctx, cancel = context.WithTimeout(parent, budget)
			carrier.SetStdContext(cctx)
			defer cancel()
		}

		type result struct {
			resp  *canonical.Response
			err   error
			panic any
		}
		done := make(chan result, 1)

		go func() {
			var res result
			defer func() {
				if r := recover(); r != nil {
					res = result{panic: r}
				}
				done <- res
			}()
			res.resp, res.err = next()
		}()

		timer := time.NewTimer(budget)
		defer timer.Stop()

		select {
		case res := <-done:
			if res.panic != nil {
				panic(res.panic)
			}
			return res.resp, res.err
		case <-timer.C:
			if cancel != nil {
				cancel()
			}
			return nil, apperr.New(apperr.Timeout, opts.Message)
		}
	}
}

func effectiveBudget(ctx any, opts TimeoutOptions) time.Duration {
	budget := opts.Default
	b, ok := ctx.(Budgeter)
	if !ok {
		return budget
	}
	if d, exists := opts.TenantOverrides[b.TenantID()]; exists && (budget <= 0 || d < budget) {
		budget = d
	}
	if d, exists := opts.OperationOverrides[b.OperationName()]; exists && (budget <= 0 || d < budget) {
		budget = d
	}
	if ms := b.RemainingMS(); ms > 0 {
		if d := time.Duration(ms) * time.Millisecond; budget <= 0 || d < budget {
			budget = d
		}
	}
	return budget
}
