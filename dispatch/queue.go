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
	"encoding/json"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
)

func (d *Dispatcher) dispatchQueue(raw []byte) (any, error) {
	var ev canonical.QueueEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, apperr.New(apperr.BadRequest, "malformed queue event")
	}
	adapter := canonical.QueueAdapter{}
	resp := d.runBatch(
		len(ev.Records),
		func(i int) string { return ev.Records[i].MessageID },
		func(i int) string { return canonical.QueueNameFromARN(ev.Records[i].EventSourceARN) },
		d.queue,
		func(i int) (*canonical.Request, error) { return adapter.ToCanonical(ev.Records[i]), nil },
	)
	return resp, nil
}
