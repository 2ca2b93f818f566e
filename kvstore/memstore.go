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
	"sync"
)

type entryKey struct{ pk, sk string }

// MemStore is an in-process Store guarded by a single mutex, giving exact
// linearizable conditional semantics — the same guarantee the production
// SQLStore gives via single-statement conditional updates, just without a
// disk round trip. Used by the harness and by unit tests that need the §8
// invariants to hold deterministically under concurrent goroutines.
type MemStore struct {
	mu      sync.Mutex
	entries map[entryKey]Entry
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{entries: map[entryKey]Entry{}}
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, pk, sk string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryKey{pk, sk}]
	if !ok {
		return nil, nil
	}
	cp := e
	cp.Metadata = cloneMetadata(e.Metadata)
	return &cp, nil
}

// PutIfAbsent implements Store.
func (m *MemStore) PutIfAbsent(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey{entry.PK, entry.SK}
	if _, ok := m.entries[key]; ok {
		return ErrAlreadyExists
	}
	m.entries[key] = entry
	return nil
}

// ConditionalAdd implements Store.
func (m *MemStore) ConditionalAdd(_ context.Context, a Add) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conditionalAddLocked(a)
}

// conditionalAddLocked performs one conditional add while m.mu is already
// held — factored out so TransactWrite can apply several under one lock
// without deadlocking on itself.
func (m *MemStore) conditionalAddLocked(a Add) (*Entry, error) {
	key := entryKey{a.PK, a.SK}
	e, ok := m.entries[key]
	if !ok {
		if a.Limit <= 0 {
			return nil, ErrConditionFailed
		}
		created := Entry{
			PK: a.PK, SK: a.SK, Count: a.Delta,
			WindowType: a.WindowType, WindowID: a.WindowID,
			TTL: a.TTL, CreatedAt: a.Now, UpdatedAt: a.Now,
			Metadata: cloneMetadata(a.Metadata),
		}
		m.entries[key] = created
		cp := created
		return &cp, nil
	}
	if e.Count+a.Delta > a.Limit {
		return nil, ErrConditionFailed
	}
	e.Count += a.Delta
	e.UpdatedAt = a.Now
	m.entries[key] = e
	cp := e
	return &cp, nil
}

// TransactWrite implements Store: every op in ops is validated against the
// in-memory map state before any of them is committed, giving true
// all-or-nothing semantics.
func (m *MemStore) TransactWrite(_ context.Context, ops []Add) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range ops {
		key := entryKey{a.PK, a.SK}
		if e, ok := m.entries[key]; ok {
			if e.Count+a.Delta > a.Limit {
				return ErrConditionFailed
			}
		} else if a.Limit <= 0 {
			return ErrConditionFailed
		}
	}

	for _, a := range ops {
		if _, err := m.conditionalAddLocked(a); err != nil {
			// Unreachable given the pre-check above, but fail closed
			// rather than leave a partial transaction applied.
			return err
		}
	}
	return nil
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
