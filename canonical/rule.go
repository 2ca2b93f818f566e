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

// RuleEvent is an EventBridge scheduled/rule event: unlike the
// record-batch sources, it carries a single payload at the top level. Older
// CloudWatch Events payloads use `detailType` instead of `detail-type`;
// DetailTypeOf prefers whichever is present.
type RuleEvent struct {
	ID             string          `json:"id"`
	Source         string          `json:"source"`
	DetailTypeHyphen string        `json:"detail-type"`
	DetailTypeCamel  string        `json:"detailType"`
	Resources      []string        `json:"resources"`
	Detail         json.RawMessage `json:"detail"`
}

// DetailTypeOf returns the event's detail-type under either wire key.
func (ev RuleEvent) DetailTypeOf() string {
	if ev.DetailTypeHyphen != "" {
		return ev.DetailTypeHyphen
	}
	return ev.DetailTypeCamel
}

// RuleAdapter adapts a RuleEvent into a Request whose body is the raw
// `detail` payload.
type RuleAdapter struct{}

func (RuleAdapter) Name() string { return "rule" }

// ToCanonical converts a RuleEvent into a Request.
func (RuleAdapter) ToCanonical(ev RuleEvent) *Request {
	return &Request{
		Method:  "MESSAGE",
		Path:    "/",
		Query:   map[string][]string{},
		Headers: map[string][]string{},
		Cookies: map[string]string{},
		Body:    []byte(ev.Detail),
	}
}
