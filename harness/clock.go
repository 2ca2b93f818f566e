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

// Package harness implements the Test Harness: manual
// Clock/IDSource fakes, a fixture-driven end-to-end runner, and fake
// auth/policy hooks and socket management-client factory, so fixtures
// exercise App.Serve deterministically.
package harness

import (
	"sync"
	"time"

	apptheory "github.com/theory-cloud/AppTheory"
)

// FixedClock always returns the same instant, changed only by explicit
// calls to Advance or Set — for fixtures that assert on timestamps.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock builds a FixedClock starting at at.
func NewFixedClock(at time.Time) *FixedClock {
	return &FixedClock{now: at}
}

// Now implements apptheory.Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set pins the clock to at.
func (c *FixedClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

var _ apptheory.Clock = (*FixedClock)(nil)
