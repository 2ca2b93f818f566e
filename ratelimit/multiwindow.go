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

// WindowSpec is one window configured within a MultiWindow.
type WindowSpec struct {
	Duration time.Duration
	Limit    int64
}

// MultiWindow enforces several WindowSpecs at once: a request is allowed
// only if every configured window has headroom, and check_and_increment
// commits to all of them or none.
type MultiWindow struct {
	Store      kvstore.Store
	Windows    []WindowSpec
	TTLHorizon time.Duration
	FailOpen   bool
}

func (mw *MultiWindow) windowStart(spec WindowSpec, now time.Time) time.Time {
	return now.Truncate(spec.Duration)
}

func (mw *MultiWindow) suffix(spec WindowSpec) string {
	return "_" + spec.Duration.String()
}

// CheckLimit implements the read-only check_limit operation: allowed only
// if every window currently has headroom.
func (mw *MultiWindow) CheckLimit(ctx context.Context, key Key, now time.Time) (Decision, error) {
	key = key.sanitize()
	var soonestReset time.Time
	for _, spec := range mw.Windows {
		start := mw.windowStart(spec, now)
		resetsAt := start.Add(spec.Duration)
		if soonestReset.IsZero() || resetsAt.Before(soonestReset) {
			soonestReset = resetsAt
		}

		entry, err := mw.Store.Get(ctx, key.pk(start.Unix()), key.sk(mw.suffix(spec)))
		if err != nil {
			if mw.FailOpen {
				continue
			}
			return Decision{}, err
		}
		count := int64(0)
		if entry != nil {
			count = entry.Count
		}
		if count >= spec.Limit {
			return denyWithRetry(resetsAt, now), nil
		}
	}
	return allowUntil(soonestReset), nil
}

// RecordRequest adds one request to every configured window, independently
// and without conditioning on any window's limit.
func (mw *MultiWindow) RecordRequest(ctx context.Context, key Key, now time.Time) error {
	key = key.sanitize()
	for _, spec := range mw.Windows {
		start := mw.windowStart(spec, now)
		_, err := mw.Store.ConditionalAdd(ctx, kvstore.Add{
			PK: key.pk(start.Unix()), SK: key.sk(mw.suffix(spec)),
			Delta: 1, Limit: unconditionalLimit,
			Now: now.Unix(), TTL: start.Add(spec.Duration).Add(mw.TTLHorizon).Unix(),
			WindowType: "multi", WindowID: start.Format(time.RFC3339),
			Metadata: key.Metadata,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckAndIncrement implements the all-or-nothing multi-window
// conditional add via a single Store.TransactWrite call.
func (mw *MultiWindow) CheckAndIncrement(ctx context.Context, key Key, now time.Time) (Decision, error) {
	key = key.sanitize()
	ops := make([]kvstore.Add, 0, len(mw.Windows))
	var soonestReset time.Time
	for _, spec := range mw.Windows {
		if spec.Limit <= 0 {
			return denyWithRetry(now.Add(spec.Duration), now), nil
		}
		start := mw.windowStart(spec, now)
		resetsAt := start.Add(spec.Duration)
		if soonestReset.IsZero() || resetsAt.Before(soonestReset) {
			soonestReset = resetsAt
		}
		ops = append(ops, kvstore.Add{
			PK: key.pk(start.Unix()), SK: key.sk(mw.suffix(spec)),
			Delta: 1, Limit: spec.Limit,
			Now: now.Unix(), TTL: resetsAt.Add(mw.TTLHorizon).Unix(),
			WindowType: "multi", WindowID: start.Format(time.RFC3339),
			Metadata: key.Metadata,
		})
	}

	err := mw.Store.TransactWrite(ctx, ops)
	if err == nil {
		return allowUntil(soonestReset), nil
	}
	if errors.Is(err, kvstore.ErrConditionFailed) {
		// On denial, resets_at is the maximum end among the windows that
		// were actually exceeded, not the soonest window overall — a
		// request blocked by an hourly cap shouldn't report a one-second
		// retry (spec design note on multi-window denial resets_at).
		return denyWithRetry(mw.maxExceededReset(ctx, key, now, soonestReset), now), nil
	}
	if mw.FailOpen {
		return allowUntil(soonestReset), nil
	}
	return Decision{}, err
}

// maxExceededReset re-reads each window to find which ones are at or over
// their limit and returns the maximum reset time among those. If the
// re-read itself fails, it falls back to the maximum reset among every
// configured window (see DESIGN.md's resolution of this denial-reset tie).
func (mw *MultiWindow) maxExceededReset(ctx context.Context, key Key, now, fallback time.Time) time.Time {
	var maxExceeded, maxAny time.Time
	for _, spec := range mw.Windows {
		start := mw.windowStart(spec, now)
		resetsAt := start.Add(spec.Duration)
		if maxAny.IsZero() || resetsAt.After(maxAny) {
			maxAny = resetsAt
		}
		entry, err := mw.Store.Get(ctx, key.pk(start.Unix()), key.sk(mw.suffix(spec)))
		if err != nil || entry == nil {
			continue
		}
		if entry.Count+1 > spec.Limit && (maxExceeded.IsZero() || resetsAt.After(maxExceeded)) {
			maxExceeded = resetsAt
		}
	}
	if !maxExceeded.IsZero() {
		return maxExceeded
	}
	if !maxAny.IsZero() {
		return maxAny
	}
	return fallback
}

// Usage returns the current count for each configured window, in the same
// order as Windows, for get_usage.
func (mw *MultiWindow) Usage(ctx context.Context, key Key, now time.Time) ([]int64, error) {
	key = key.sanitize()
	usage := make([]int64, len(mw.Windows))
	for i, spec := range mw.Windows {
		start := mw.windowStart(spec, now)
		entry, err := mw.Store.Get(ctx, key.pk(start.Unix()), key.sk(mw.suffix(spec)))
		if err != nil {
			return nil, err
		}
		if entry != nil {
			usage[i] = entry.Count
		}
	}
	return usage, nil
}
