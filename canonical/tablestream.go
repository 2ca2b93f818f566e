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

import "encoding/json"

// TableStreamRecord is one DynamoDB Streams record.
type TableStreamRecord struct {
	EventID        string          `json:"eventID"`
	EventName      string          `json:"eventName"`
	EventSourceARN string          `json:"eventSourceARN"`
	EventSource    string          `json:"eventSource"`
	DynamoDB       json.RawMessage `json:"dynamodb"`
}

// TableStreamEvent is a batch of DynamoDB Streams records.
type TableStreamEvent struct {
	Records []TableStreamRecord `json:"Records"`
}

// TableStreamAdapter adapts a single DynamoDB Streams record.
type TableStreamAdapter struct{}

func (TableStreamAdapter) Name() string { return "table-stream" }

// ToCanonical converts one TableStreamRecord into a Request carrying the
// record's DynamoDB image as the body.
func (TableStreamAdapter) ToCanonical(rec TableStreamRecord) *Request {
	return &Request{
		Method:  "MESSAGE",
		Path:    "/",
		Query:   map[string][]string{},
		Headers: map[string][]string{},
		Cookies: map[string]string{},
		Body:    []byte(rec.DynamoDB),
	}
}
