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

// dispatchPubSub implements the pub/sub rule: a single handler
// call selected by topic-name-from-ARN; its return value passes through;
// an unmatched topic raises rather than degrading to a batch failure.
func (d *Dispatcher) dispatchPubSub(raw []byte) (any, error) {
	var ev canonical.PubSubEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, apperr.New(apperr.BadRequest, "malformed pub/sub event")
	}
	if len(ev.Records) == 0 {
		return nil, apperr.New(apperr.BadRequest, "pub/sub event carries no records")
	}
	rec := ev.Records[0]
	topic := canonical.TopicNameFromARN(rec.SNS.TopicArn)
	h, ok := d.topic[topic]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "no handler registered for topic %q", topic)
	}

	req := canonical.PubSubAdapter{}.ToCanonical(rec)
	ctx := d.newRecordContext(req)
	return d.invoke(ctx, h)
}
