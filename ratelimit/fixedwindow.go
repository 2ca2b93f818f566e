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
	"errors"
	"time"

	"github.com/theory-cloud/AppTheory/kvstore"
)

// FixedWindow is a single window starting at floor(now/Duration) capped at
// Limit.
type FixedWindow struct {
	Store    kvstore.Store
	Duration time.Duration
	Limit    int64
	// TTLHorizon extends past the window's end before the entry expires
	// from the store.
	TTLHorizon time.Duration
	// FailOpen allows requests through when the store itself fails (not
	// when the limit is exceeded).
	FailOpen bool
}

func (fw *FixedWindow) windowStart(now time.Time) time.Time {
	d := fw.Duration
	if d <= 0 {
		d = time.Minute
	}
	return now.Truncate(d)
}

func (fw *FixedWindow) windowEnd(now time.Time) time.Time {
	return fw.windowStart(now).Add(fw.durationOrDefault())
}

func (fw *FixedWindow) durationOrDefault() time.Duration {
	if fw.Duration <= 0 {
		return time.Minute
	}
	return fw.Duration
}

// CheckLimit implements the read-only check_limit operation.
func (fw *FixedWindow) CheckLimit(ctx context.Context, key Key, now time.Time) (Decision, error) {
	key = key.sanitize()
	pk, sk := key.pk(fw.windowStart(now).Unix()), key.sk("")

	entry, err := fw.Store.Get(ctx, pk, sk)
	if err != nil {
		if fw.FailOpen {
			return allowUntil(fw.windowEnd(now)), nil
		}
		return Decision{}, err
	}
	count := int64(0)
	if entry != nil {
		count = entry.Count
	}
	if count < fw.Limit {
		return allowUntil(fw.windowEnd(now)), nil
	}
	return denyWithRetry(fw.windowEnd(now), now), nil
}

// RecordRequest implements the non-atomic record_request operation: it adds
// one request regardless of the current count, creating the entry via
// set-if-absent on first write.
func (fw *FixedWindow) RecordRequest(ctx context.Context, key Key, now time.Time) error {
	key = key.sanitize()
	start := fw.windowStart(now)
	_, err := fw.Store.ConditionalAdd(ctx, kvstore.Add{
		PK: key.pk(start.Unix()), SK: key.sk(""),
		Delta: 1, Limit: unconditionalLimit,
		Now: now.Unix(), TTL: fw.windowEnd(now).Add(fw.TTLHorizon).Unix(),
		WindowType: "fixed", WindowID: start.Format(time.RFC3339),
		Metadata: key.Metadata,
	})
	return err
}

// unconditionalLimit is used for record_request's "non-atomic ADD": any
// Add whose Limit is this large always satisfies `count+delta <= limit`,
// so the store's set-if-absent-on-first-write behavior still applies
// without the count ever being capped.
const unconditionalLimit = int64(1) << 62

// CheckAndIncrement implements the single-window conditional add.
func (fw *FixedWindow) CheckAndIncrement(ctx context.Context, key Key, now time.Time) (Decision, error) {
	key = key.sanitize()
	if fw.Limit <= 0 {
		return denyWithRetry(fw.windowEnd(now), now), nil
	}
	return fw.checkAndIncrementOnce(ctx, key, now)
}

func (fw *FixedWindow) checkAndIncrementOnce(ctx context.Context, key Key, now time.Time) (Decision, error) {
	start := fw.windowStart(now)
	pk, sk := key.pk(start.Unix()), key.sk("")

	_, err := fw.Store.ConditionalAdd(ctx, kvstore.Add{
		PK: pk, SK: sk, Delta: 1, Limit: fw.Limit,
		Now: now.Unix(), TTL: fw.windowEnd(now).Add(fw.TTLHorizon).Unix(),
		WindowType: "fixed", WindowID: start.Format(time.RFC3339),
		Metadata: key.Metadata,
	})
	if err == nil {
		return allowUntil(fw.windowEnd(now)), nil
	}
	if !errors.Is(err, kvstore.ErrConditionFailed) {
		if fw.FailOpen {
			return allowUntil(fw.windowEnd(now)), nil
		}
		return Decision{}, err
	}

	existing, gerr := fw.Store.Get(ctx, pk, sk)
	if gerr != nil {
		if fw.FailOpen {
			return allowUntil(fw.windowEnd(now)), nil
		}
		return Decision{}, gerr
	}
	if existing != nil {
		return denyWithRetry(fw.windowEnd(now), now), nil
	}

	// No entry exists yet, but the conditional add still failed — another
	// caller created it after our read. Attempt the deterministic
	// first-write; on a collision, retry the whole operation once.
	perr := fw.Store.PutIfAbsent(ctx, kvEntryFor(key, pk, sk, 1, "fixed", start, fw.windowEnd(now).Add(fw.TTLHorizon), now))
	if perr == nil {
		return allowUntil(fw.windowEnd(now)), nil
	}
	if errors.Is(perr, kvstore.ErrAlreadyExists) {
		return fw.checkAndIncrementOnce(ctx, key, now)
	}
	if fw.FailOpen {
		return allowUntil(fw.windowEnd(now)), nil
	}
	return Decision{}, perr
}

func kvEntryFor(key Key, pk, sk string, count int64, windowType string, windowID, ttl, now time.Time) kvstore.Entry {
	return kvstore.Entry{
		PK: pk, SK: sk, Count: count,
		WindowType: windowType, WindowID: windowID.Format(time.RFC3339),
		TTL: ttl.Unix(), CreatedAt: now.Unix(), UpdatedAt: now.Unix(),
		Metadata: key.Metadata,
	}
}
