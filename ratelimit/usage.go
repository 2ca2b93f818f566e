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

package ratelimit

import (
	"context"
	"time"
)

// Usage returns the window's current count for get_usage.
func (fw *FixedWindow) Usage(ctx context.Context, key Key, now time.Time) (int64, error) {
	key = key.sanitize()
	entry, err := fw.Store.Get(ctx, key.pk(fw.windowStart(now).Unix()), key.sk(""))
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return entry.Count, nil
}

// Limiter is satisfied by every window strategy (FixedWindow, SlidingWindow
// and MultiWindow). Usage is not part of it, since MultiWindow's Usage
// returns one count per window. It is the shape the Policy/Auth hook
// (hooks.Observability's sibling, the policy hook wired via
// apptheory.WithPolicyHook) closes over when it needs a single allow/deny
// decision regardless of which strategy backs a given route.
type Limiter interface {
	CheckLimit(ctx context.Context, key Key, now time.Time) (Decision, error)
	RecordRequest(ctx context.Context, key Key, now time.Time) error
	CheckAndIncrement(ctx context.Context, key Key, now time.Time) (Decision, error)
}

var (
	_ Limiter = (*FixedWindow)(nil)
	_ Limiter = (*SlidingWindow)(nil)
	_ Limiter = (*MultiWindow)(nil)
)
