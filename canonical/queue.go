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

package canonical

// QueueRecord is one SQS record.
type QueueRecord struct {
	MessageID      string `json:"messageId"`
	Body           string `json:"body"`
	EventSourceARN string `json:"eventSourceARN"`
	EventSource    string `json:"eventSource"`
}

// QueueEvent is a batch of SQS records.
type QueueEvent struct {
	Records []QueueRecord `json:"Records"`
}

// BatchItemFailure identifies one failed record for partial-batch reporting
//.
type BatchItemFailure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

// BatchResponse is the reply shape for queue/stream triggers.
type BatchResponse struct {
	BatchItemFailures []BatchItemFailure `json:"batchItemFailures"`
}

// QueueAdapter adapts a single SQS record into a Request whose body is the
// raw message body (queue events carry no base64 flag; the body is always
// a plain string).
type QueueAdapter struct{}

func (QueueAdapter) Name() string { return "queue" }

// ToCanonical converts one QueueRecord into a Request. Queue records have
// no HTTP method/path; callers route by queue name instead, so
// Method/Path are set to synthetic values only used for diagnostics.
func (QueueAdapter) ToCanonical(rec QueueRecord) *Request {
	return &Request{
		Method:  "MESSAGE",
		Path:    "/",
		Query:   map[string][]string{},
		Headers: map[string][]string{},
		Cookies: map[string]string{},
		Body:    []byte(rec.Body),
	}
}
