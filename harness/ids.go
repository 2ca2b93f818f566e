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
	"strconv"
	"sync"

	apptheory "github.com/theory-cloud/AppTheory"
)

// SequentialIDs mints deterministic, prefixed ids ("req_test_1",
// "req_test_2", …) so fixtures can assert on a freshly-minted request id
// without depending on a random UUID.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs builds a SequentialIDs with the given prefix, defaulting
// to "req_test_" when prefix is empty.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "req_test_"
	}
	return &SequentialIDs{prefix: prefix}
}

// NewID implements apptheory.IDSource.
func (s *SequentialIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.prefix + strconv.Itoa(s.n)
}

// Reset sets the counter back to zero.
func (s *SequentialIDs) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}

var _ apptheory.IDSource = (*SequentialIDs)(nil)
