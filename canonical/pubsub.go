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

// PubSubRecord is one SNS notification record.
type PubSubRecord struct {
	EventSource string        `json:"EventSource"`
	SNS         PubSubMessage `json:"Sns"`
}

// PubSubMessage is the nested SNS message payload.
type PubSubMessage struct {
	TopicArn string `json:"TopicArn"`
	Message  string `json:"Message"`
}

// PubSubEvent is a batch of SNS records (conventionally one per invocation).
type PubSubEvent struct {
	Records []PubSubRecord `json:"Records"`
}

// PubSubAdapter adapts a single SNS record.
type PubSubAdapter struct{}

func (PubSubAdapter) Name() string { return "pubsub" }

// ToCanonical converts one PubSubRecord into a Request whose body is the
// SNS message payload.
func (PubSubAdapter) ToCanonical(rec PubSubRecord) *Request {
	return &Request{
		Method:  "MESSAGE",
		Path:    "/",
		Query:   map[string][]string{},
		Headers: map[string][]string{},
		Cookies: map[string]string{},
		Body:    []byte(rec.SNS.Message),
	}
}
