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

// ShardStreamRecord is one Kinesis Data Streams record.
type ShardStreamRecord struct {
	EventID        string          `json:"eventID"`
	EventSourceARN string          `json:"eventSourceARN"`
	EventSource    string          `json:"eventSource"`
	Kinesis        KinesisPayload  `json:"kinesis"`
}

// KinesisPayload is the nested Kinesis record data.
type KinesisPayload struct {
	Data string `json:"data"`
}

// ShardStreamEvent is a batch of Kinesis records.
type ShardStreamEvent struct {
	Records []ShardStreamRecord `json:"Records"`
}

// ShardStreamAdapter adapts a single Kinesis record, base64-decoding its
// payload into a raw body.
type ShardStreamAdapter struct{}

func (ShardStreamAdapter) Name() string { return "shard-stream" }

// ToCanonical converts one ShardStreamRecord into a Request.
func (ShardStreamAdapter) ToCanonical(rec ShardStreamRecord) (*Request, error) {
	body, err := NormalizeBody(rec.Kinesis.Data, true)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:  "MESSAGE",
		Path:    "/",
		Query:   map[string][]string{},
		Headers: map[string][]string{},
		Cookies: map[string]string{},
		Body:    body,
	}, nil
}
