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

// SlidingWindow approximates a true sliding window by dividing Window into
// BucketCount fixed-size sub-windows and summing the ones that overlap
// [now-Window, now].
//
// Store.ConditionalAdd's predicate is per-entry, so there is no single
// atomic operation that can condition on the sum of several buckets at
// once. CheckAndIncrement instead reads the other buckets first, derives
// the budget still available to the current bucket, and conditions only
// that bucket's own add on the derived budget. Two callers racing across
// different buckets can therefore both be admitted even when their
// combined total would exceed Limit by one; the window as a whole is
// still bounded because every bucket's own count is exact and bounded.
// This is a deliberate trade: the alternative, a lock spanning all buckets,
// would serialize every caller in the window and defeat the point of
// bucketing.
type SlidingWindow struct {
	Store       kvstore.Store
	Window      time.Duration
	BucketCount int
	Limit       int64
	TTLHorizon  time.Duration
	FailOpen    bool
}

func (sw *SlidingWindow) bucketCount() int {
	if sw.BucketCount <= 0 {
		return 1
	}
	return sw.BucketCount
}

func (sw *SlidingWindow) bucketDuration() time.Duration {
	d := sw.Window / time.Duration(sw.bucketCount())
	if d <= 0 {
		return time.Second
	}
	return d
}

func (sw *SlidingWindow) bucketIndex(t time.Time) int64 {
	return t.UnixNano() / sw.bucketDuration().Nanoseconds()
}

func (sw *SlidingWindow) bucketStart(idx int64) time.Time {
	return time.Unix(0, idx*sw.bucketDuration().Nanoseconds()).UTC()
}

func (sw *SlidingWindow) windowStart(now time.Time) time.Time {
	return now.Add(-sw.Window)
}

// sumOtherBuckets reads every bucket in the window except idx and returns
// their combined count.
func (sw *SlidingWindow) sumOtherBuckets(ctx context.Context, key Key, current int64) (int64, error) {
	var sum int64
	lookback := int64(sw.bucketCount())
	for idx := current - lookback + 1; idx < current; idx++ {
		start := sw.bucketStart(idx)
		entry, err := sw.Store.Get(ctx, key.pk(start.Unix()), key.sk(""))
		if err != nil {
			return 0, err
		}
		if entry != nil {
			sum += entry.Count
		}
	}
	return sum, nil
}

// CheckLimit implements the read-only check_limit operation.
func (sw *SlidingWindow) CheckLimit(ctx context.Context, key Key, now time.Time) (Decision, error) {
	key = key.sanitize()
	current := sw.bucketIndex(now)
	others, err := sw.sumOtherBuckets(ctx, key, current)
	if err != nil {
		if sw.FailOpen {
			return allowUntil(now.Add(sw.bucketDuration())), nil
		}
		return Decision{}, err
	}
	currentEntry, err := sw.Store.Get(ctx, key.pk(sw.bucketStart(current).Unix()), key.sk(""))
	if err != nil {
		if sw.FailOpen {
			return allowUntil(now.Add(sw.bucketDuration())), nil
		}
		return Decision{}, err
	}
	total := others
	if currentEntry != nil {
		total += currentEntry.Count
	}
	resetsAt := sw.bucketStart(current).Add(sw.bucketDuration())
	if total < sw.Limit {
		return allowUntil(resetsAt), nil
	}
	return denyWithRetry(resetsAt, now), nil
}

// RecordRequest adds one request to the current bucket unconditionally.
func (sw *SlidingWindow) RecordRequest(ctx context.Context, key Key, now time.Time) error {
	key = key.sanitize()
	current := sw.bucketIndex(now)
	start := sw.bucketStart(current)
	_, err := sw.Store.ConditionalAdd(ctx, kvstore.Add{
		PK: key.pk(start.Unix()), SK: key.sk(""),
		Delta: 1, Limit: unconditionalLimit,
		Now: now.Unix(), TTL: start.Add(sw.bucketDuration()).Add(sw.Window).Add(sw.TTLHorizon).Unix(),
		WindowType: "sliding", WindowID: start.Format(time.RFC3339),
		Metadata: key.Metadata,
	})
	return err
}

// CheckAndIncrement implements the sliding-window conditional add.
func (sw *SlidingWindow) CheckAndIncrement(ctx context.Context, key Key, now time.Time) (Decision, error) {
	key = key.sanitize()
	if sw.Limit <= 0 {
		return denyWithRetry(now.Add(sw.bucketDuration()), now), nil
	}
	return sw.checkAndIncrementOnce(ctx, key, now)
}

func (sw *SlidingWindow) checkAndIncrementOnce(ctx context.Context, key Key, now time.Time) (Decision, error) {
	current := sw.bucketIndex(now)
	start := sw.bucketStart(current)
	resetsAt := start.Add(sw.bucketDuration())

	others, err := sw.sumOtherBuckets(ctx, key, current)
	if err != nil {
		if sw.FailOpen {
			return allowUntil(resetsAt), nil
		}
		return Decision{}, err
	}
	budget := sw.Limit - others
	if budget < 0 {
		budget = 0
	}

	pk, sk := key.pk(start.Unix()), key.sk("")
	_, err = sw.Store.ConditionalAdd(ctx, kvstore.Add{
		PK: pk, SK: sk, Delta: 1, Limit: budget,
		Now: now.Unix(), TTL: resetsAt.Add(sw.Window).Add(sw.TTLHorizon).Unix(),
		WindowType: "sliding", WindowID: start.Format(time.RFC3339),
		Metadata: key.Metadata,
	})
	if err == nil {
		return allowUntil(resetsAt), nil
	}
	if !errors.Is(err, kvstore.ErrConditionFailed) {
		if sw.FailOpen {
			return allowUntil(resetsAt), nil
		}
		return Decision{}, err
	}

	existing, gerr := sw.Store.Get(ctx, pk, sk)
	if gerr != nil {
		if sw.FailOpen {
			return allowUntil(resetsAt), nil
		}
		return Decision{}, gerr
	}
	if existing != nil {
		return denyWithRetry(resetsAt, now), nil
	}
	if budget <= 0 {
		return denyWithRetry(resetsAt, now), nil
	}

	perr := sw.Store.PutIfAbsent(ctx, kvEntryFor(key, pk, sk, 1, "sliding", start, resetsAt.Add(sw.Window).Add(sw.TTLHorizon), now))
	if perr == nil {
		return allowUntil(resetsAt), nil
	}
	if errors.Is(perr, kvstore.ErrAlreadyExists) {
		return sw.checkAndIncrementOnce(ctx, key, now)
	}
	if sw.FailOpen {
		return allowUntil(resetsAt), nil
	}
	return Decision{}, perr
}

// Usage returns the current total count across every bucket in the window,
// for get_usage.
func (sw *SlidingWindow) Usage(ctx context.Context, key Key, now time.Time) (int64, error) {
	key = key.sanitize()
	current := sw.bucketIndex(now)
	others, err := sw.sumOtherBuckets(ctx, key, current)
	if err != nil {
		return 0, err
	}
	currentEntry, err := sw.Store.Get(ctx, key.pk(sw.bucketStart(current).Unix()), key.sk(""))
	if err != nil {
		return 0, err
	}
	total := others
	if currentEntry != nil {
		total += currentEntry.Count
	}
	return total, nil
}
