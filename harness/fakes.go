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

package harness

import (
	apptheory "github.com/theory-cloud/AppTheory"
	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/hooks"
)

// FakeAuth builds an apptheory AuthFunc from a fixed identity→error table,
// keyed by the inbound Authorization header value, so a fixture's setup
// block can configure auth outcomes without a real credential check.
type FakeAuth struct {
	// ByToken maps an Authorization header value to the identity it
	// resolves to. A token absent from this map is unauthorized.
	ByToken map[string]string
}

// Hook adapts FakeAuth into the AuthFunc shape App.WithAuthHook expects.
func (f *FakeAuth) Hook() func(ctx *apptheory.Context) (string, error) {
	return func(ctx *apptheory.Context) (string, error) {
		token := ctx.Req.Header("authorization")
		identity, ok := f.ByToken[token]
		if !ok {
			return "", apperr.New(apperr.Unauthorized, "no identity for supplied credentials")
		}
		return identity, nil
	}
}

// FakePolicy always returns the configured decision, or allows (nil, nil)
// when Decision is nil.
type FakePolicy struct {
	Decision *hooks.PolicyDecision
	Err      error
}

// Hook adapts FakePolicy into the PolicyFunc shape App.WithPolicyHook expects.
func (f *FakePolicy) Hook() func(ctx *apptheory.Context) (*hooks.PolicyDecision, error) {
	return func(ctx *apptheory.Context) (*hooks.PolicyDecision, error) {
		return f.Decision, f.Err
	}
}
