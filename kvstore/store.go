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

// Package kvstore implements the conditional-update key/value contract the
// Rate Limiter requires: every mutation is either a
// set-if-absent or a compare-and-add, never a blind read-modify-write, so
// concurrent callers can never observe more allowed increments than the
// configured limit.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is not returned by MemStore or SQLStore: their Get reports an
// absent key as (nil, nil), as the Store contract below states.
var ErrNotFound = errors.New("kvstore: entry not found")

// ErrAlreadyExists is returned by PutIfAbsent when pk/sk already has an
// entry.
var ErrAlreadyExists = errors.New("kvstore: entry already exists")

// ErrConditionFailed is returned by ConditionalAdd/TransactWrite when the
// per-window predicate (`count < limit`) does not hold.
var ErrConditionFailed = errors.New("kvstore: condition failed")

// Entry is one RateLimitEntry: `pk = "${identifier}#${window_start_unix}"`,
// `sk = "${resource}#${operation}"`.
type Entry struct {
	PK         string
	SK         string
	Count      int64
	WindowType string
	WindowID   string
	TTL        int64
	CreatedAt  int64
	UpdatedAt  int64
	Metadata   map[string]string
}

// Add is one window's conditional-add request within a ConditionalAdd or
// TransactWrite call.
type Add struct {
	PK         string
	SK         string
	Delta      int64
	Limit      int64 // limit <= 0 means "always deny"
	Now        int64
	TTL        int64
	WindowType string
	WindowID   string
	Metadata   map[string]string
}

// Store is the conditional-update contract every rate-limiter strategy
// writes through. Implementations must make ConditionalAdd and
// TransactWrite atomic with respect to the `count < limit` predicate —
// that is what gives `check_and_increment` its "never exceeds limit across
// concurrent callers" guarantee.
type Store interface {
	// Get reads one entry, returning (nil, nil) if absent.
	Get(ctx context.Context, pk, sk string) (*Entry, error)

	// PutIfAbsent creates an entry only if pk/sk does not already exist,
	// returning ErrAlreadyExists otherwise.
	PutIfAbsent(ctx context.Context, entry Entry) error

	// ConditionalAdd atomically adds a.Delta to the entry's count if
	// `count+delta <= limit` (equivalently pre-check `count < limit`) or
	// the entry does not yet exist and limit > 0 (in which case it is
	// created with count = delta). Returns ErrConditionFailed when the
	// predicate does not hold, including for an absent entry when
	// limit <= 0.
	ConditionalAdd(ctx context.Context, a Add) (*Entry, error)

	// TransactWrite applies every Add in ops atomically: either every
	// window's conditional add succeeds, or none of them take effect
	//. Returns ErrConditionFailed if any op's predicate
	// fails.
	TransactWrite(ctx context.Context, ops []Add) error
}
