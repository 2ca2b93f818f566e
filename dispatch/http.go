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

// dispatchHTTPV2 hands a versioned-HTTP (or routeKey-only "v2 alt") event
// off to the tiered pipeline.
func (d *Dispatcher) dispatchHTTPV2(raw []byte) (any, error) {
	if d.HTTPApp == nil {
		return nil, apperr.New(apperr.Internal, "no HTTP app configured")
	}
	var ev canonical.HTTPV2Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, apperr.New(apperr.BadRequest, "malformed http-v2 event")
	}
	req, err := canonical.HTTPV2Adapter{}.ToCanonical(ev)
	if err != nil {
		return nil, err
	}
	resp := d.HTTPApp.Serve(req)
	return canonical.HTTPV2Adapter{}.FromCanonical(resp)
}

// dispatchLegacyProxy hands a legacy REST API / ALB event off to the
// tiered pipeline.
func (d *Dispatcher) dispatchLegacyProxy(raw []byte) (any, error) {
	if d.HTTPApp == nil {
		return nil, apperr.New(apperr.Internal, "no HTTP app configured")
	}
	var ev canonical.LegacyProxyEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, apperr.New(apperr.BadRequest, "malformed legacy-proxy event")
	}
	req, err := canonical.LegacyProxyAdapter{}.ToCanonical(ev)
	if err != nil {
		return nil, err
	}
	resp := d.HTTPApp.Serve(req)
	return canonical.LegacyProxyAdapter{}.FromCanonical(resp)
}
