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

// dispatchRule implements the rule selector: a configured rule name
// contained in the event's `resources` list (`…:rule/<name>`) is tried
// first, then a configured (source, detail_type) pair; an unmatched rule
// returns nil rather than raising.
func (d *Dispatcher) dispatchRule(raw []byte) (any, error) {
	var ev canonical.RuleEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, apperr.New(apperr.BadRequest, "malformed rule event")
	}

	h := d.matchRuleHandler(ev)
	if h == nil {
		return nil, nil
	}

	req := canonical.RuleAdapter{}.ToCanonical(ev)
	ctx := d.newRecordContext(req)
	return d.invoke(ctx, h)
}

func (d *Dispatcher) matchRuleHandler(ev canonical.RuleEvent) RecordHandler {
	for _, arn := range ev.Resources {
		name := canonical.RuleNameFromARN(arn)
		if name == "" {
			continue
		}
		if h, ok := d.rule[name]; ok {
			return h
		}
	}
	if h, ok := d.rulePair[rulePairKey{source: ev.Source, detailType: ev.DetailTypeOf()}]; ok {
		return h
	}
	return nil
}
