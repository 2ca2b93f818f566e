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

package dispatch

import (
	"github.com/theory-cloud/AppTheory/canonical"
)

// runBatch implements the shared per-record semantics for queue/table-stream/
// shard-stream sources: invoke the handler selected by name for
// each record, collecting a batch item failure on any error — including "no
// handler registered for this name", which is what makes "no route matched
// at all" degrade to every identified record failing instead of panicking.
func (d *Dispatcher) runBatch(n int, identifierOf func(i int) string, nameOf func(i int) string, handlers map[string]RecordHandler, reqOf func(i int) (*canonical.Request, error)) *canonical.BatchResponse {
	resp := &canonical.BatchResponse{}
	for i := 0; i < n; i++ {
		id := identifierOf(i)
		fail := func() {
			if id != "" {
				resp.BatchItemFailures = append(resp.BatchItemFailures, canonical.BatchItemFailure{ItemIdentifier: id})
			}
		}

		h, ok := handlers[nameOf(i)]
		if !ok {
			fail()
			continue
		}

		req, err := reqOf(i)
		if err != nil {
			fail()
			continue
		}

		ctx := d.newRecordContext(req)
		if _, err := d.invoke(ctx, h); err != nil {
			fail()
			continue
		}
	}
	return resp
}
