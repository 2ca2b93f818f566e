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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/AppTheory/kvstore"
)

func testKey() Key {
	return Key{Identifier: "user-1", Resource: "api", Operation: "read"}
}

func TestFixedWindowCheckAndIncrementDeniesAtLimit(t *testing.T) {
	store := kvstore.NewMemStore()
	fw := &FixedWindow{Store: store, Duration: time.Minute, Limit: 2}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	key := testKey()
	ctx := context.Background()

	d1, err := fw.CheckAndIncrement(ctx, key, now)
	require.NoError(t, err)
	assert.True(t, d1.Allowed)

	d2, err := fw.CheckAndIncrement(ctx, key, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, d2.Allowed)

	d3, err := fw.CheckAndIncrement(ctx, key, now.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, d3.Allowed)
	assert.Greater(t, d3.RetryAfterMS, int64(0))
}

func TestFixedWindowResetsInNextWindow(t *testing.T) {
	store := kvstore.NewMemStore()
	fw := &FixedWindow{Store: store, Duration: time.Minute, Limit: 1}
	ctx := context.Background()
	key := testKey()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d1, err := fw.CheckAndIncrement(ctx, key, start)
	require.NoError(t, err)
	assert.True(t, d1.Allowed)

	d2, err := fw.CheckAndIncrement(ctx, key, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, d2.Allowed)

	d3, err := fw.CheckAndIncrement(ctx, key, start.Add(90*time.Second))
	require.NoError(t, err)
	assert.True(t, d3.Allowed)
}

func TestFixedWindowZeroLimitDeniesDeterministically(t *testing.T) {
	store := kvstore.NewMemStore()
	fw := &FixedWindow{Store: store, Duration: time.Minute, Limit: 0}
	d, err := fw.CheckAndIncrement(context.Background(), testKey(), time.Now())
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestFixedWindowCheckLimitDoesNotMutate(t *testing.T) {
	store := kvstore.NewMemStore()
	fw := &FixedWindow{Store: store, Duration: time.Minute, Limit: 1}
	ctx := context.Background()
	key := testKey()
	now := time.Now()

	for i := 0; i < 5; i++ {
		d, err := fw.CheckLimit(ctx, key, now)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	usage, err := fw.Usage(ctx, key, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage)
}

func TestSlidingWindowSumsBucketsAcrossWindow(t *testing.T) {
	store := kvstore.NewMemStore()
	sw := &SlidingWindow{Store: store, Window: time.Minute, BucketCount: 4, Limit: 3}
	ctx := context.Background()
	key := testKey()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d, err := sw.CheckAndIncrement(ctx, key, base.Add(time.Duration(i)*15*time.Second))
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be allowed", i)
	}

	d, err := sw.CheckAndIncrement(ctx, key, base.Add(50*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestMultiWindowRequiresAllWindowsToHaveHeadroom(t *testing.T) {
	store := kvstore.NewMemStore()
	mw := &MultiWindow{
		Store: store,
		Windows: []WindowSpec{
			{Duration: time.Second, Limit: 10},
			{Duration: time.Minute, Limit: 2},
		},
	}
	ctx := context.Background()
	key := testKey()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d1, err := mw.CheckAndIncrement(ctx, key, now)
	require.NoError(t, err)
	assert.True(t, d1.Allowed)

	d2, err := mw.CheckAndIncrement(ctx, key, now.Add(time.Millisecond))
	require.NoError(t, err)
	assert.True(t, d2.Allowed)

	// Per-minute window exhausted even though the per-second window still has
	// headroom; the whole request must be denied.
	d3, err := mw.CheckAndIncrement(ctx, key, now.Add(2*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, d3.Allowed)

	usage, err := mw.Usage(ctx, key, now.Add(2*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, usage)
}

// TestCheckAndIncrementNeverExceedsLimitConcurrently exercises the §8
// invariant: under concurrent callers, check_and_increment never admits
// more than Limit requests within one window.
func TestCheckAndIncrementNeverExceedsLimitConcurrently(t *testing.T) {
	store := kvstore.NewMemStore()
	const limit = 25
	fw := &FixedWindow{Store: store, Duration: time.Minute, Limit: limit}
	ctx := context.Background()
	key := testKey()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := fw.CheckAndIncrement(ctx, key, now)
			if err == nil && d.Allowed {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), atomic.LoadInt64(&allowed))
}

func TestKeySanitizeTrimsAndDropsBlankMetadata(t *testing.T) {
	k := Key{
		Identifier: "  user-1  ",
		Resource:   " api ",
		Operation:  " read ",
		Metadata:   map[string]string{"  ": "x", "tier": "gold"},
	}
	out := k.sanitize()
	assert.Equal(t, "user-1", out.Identifier)
	assert.Equal(t, "api", out.Resource)
	assert.Equal(t, "read", out.Operation)
	assert.Equal(t, map[string]string{"tier": "gold"}, out.Metadata)
}
