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

package kvstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreGetMissingReturnsNilNil(t *testing.T) {
	m := NewMemStore()
	entry, err := m.Get(context.Background(), "pk", "sk")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemStorePutIfAbsent(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	entry := Entry{PK: "pk", SK: "sk", Count: 1}
	entry.CreatedAt, entry.UpdatedAt = 100, 100

	require.NoError(t, m.PutIfAbsent(ctx, entry))
	err := m.PutIfAbsent(ctx, entry)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMemStoreConditionalAddCreatesOnFirstWrite(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	entry, err := m.ConditionalAdd(ctx, Add{PK: "pk", SK: "sk", Delta: 1, Limit: 5, Now: 1})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(1), entry.Count)
}

func TestMemStoreConditionalAddRespectsLimit(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	_, err := m.ConditionalAdd(ctx, Add{PK: "pk", SK: "sk", Delta: 1, Limit: 1, Now: 1})
	require.NoError(t, err)

	_, err = m.ConditionalAdd(ctx, Add{PK: "pk", SK: "sk", Delta: 1, Limit: 1, Now: 2})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestMemStoreConditionalAddZeroLimitOnAbsentEntryFails(t *testing.T) {
	m := NewMemStore()
	_, err := m.ConditionalAdd(context.Background(), Add{PK: "pk", SK: "sk", Delta: 1, Limit: 0, Now: 1})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestMemStoreTransactWriteAllOrNothing(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	ops := []Add{
		{PK: "pk", SK: "a", Delta: 1, Limit: 5, Now: 1},
		{PK: "pk", SK: "b", Delta: 1, Limit: 0, Now: 1}, // fails: absent + limit<=0
	}
	err := m.TransactWrite(ctx, ops)
	assert.ErrorIs(t, err, ErrConditionFailed)

	// Neither op should have taken effect.
	a, err := m.Get(ctx, "pk", "a")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestMemStoreConditionalAddConcurrentNeverExceedsLimit(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	const limit = 10

	var wg sync.WaitGroup
	results := make([]error, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.ConditionalAdd(ctx, Add{PK: "pk", SK: "sk", Delta: 1, Limit: limit, Now: int64(i)})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var allowed int
	for _, err := range results {
		if err == nil {
			allowed++
		} else if !errors.Is(err, ErrConditionFailed) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, limit, allowed)

	entry, err := m.Get(ctx, "pk", "sk")
	require.NoError(t, err)
	assert.Equal(t, int64(limit), entry.Count)
}
