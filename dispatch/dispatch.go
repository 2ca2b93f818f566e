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

// Package dispatch implements Event Dispatch: source detection
// over an arbitrary upstream event payload, selector matching against a
// registered handler table, and per-record batch semantics for queue/
// stream-shaped sources. HTTP-shaped sources are handed off to the tiered
// pipeline (the `apptheory`/`pipeline` packages); socket-shaped sources are
// handed off to the `socket` package's own route-key table.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/middleware"
	"github.com/theory-cloud/AppTheory/socket"

	apptheory "github.com/theory-cloud/AppTheory"
)

// Source tags the detected shape of an upstream event.
type Source string

const (
	SourceQueue       Source = "queue"
	SourceTableStream  Source = "table-stream"
	SourceShardStream  Source = "shard-stream"
	SourcePubSub       Source = "pubsub"
	SourceRule         Source = "rule"
	SourceSocket       Source = "socket"
	SourceHTTPV2       Source = "http-v2"
	SourceLegacyProxy  Source = "legacy-proxy"
)

// probe is the minimal shape sniffed out of a raw event to classify it,
// never the shape used to actually decode it (the detection rules
// look at a handful of top-level/nested fields only).
type probe struct {
	Records []struct {
		EventSource string `json:"eventSource"`
	} `json:"Records"`
	DetailTypeHyphen string `json:"detail-type"`
	DetailTypeCamel  string `json:"detailType"`
	RequestContext   *struct {
		ConnectionID string `json:"connectionId"`
		RouteKey     string `json:"routeKey"`
		HTTP         *struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// Detect classifies a raw event payload 's cascading rules.
func Detect(raw []byte) (Source, error) {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", apperr.New(apperr.BadRequest, "malformed event payload")
	}

	if len(p.Records) > 0 && p.Records[0].EventSource != "" {
		switch p.Records[0].EventSource {
		case "aws:sqs":
			return SourceQueue, nil
		case "aws:dynamodb":
			return SourceTableStream, nil
		case "aws:kinesis":
			return SourceShardStream, nil
		case "aws:sns":
			return SourcePubSub, nil
		default:
			return "", apperr.Newf(apperr.BadRequest, "unrecognized record event source %q", p.Records[0].EventSource)
		}
	}

	if p.DetailTypeHyphen != "" || p.DetailTypeCamel != "" {
		return SourceRule, nil
	}

	if p.RequestContext != nil {
		switch {
		case p.RequestContext.ConnectionID != "":
			return SourceSocket, nil
		case p.RequestContext.HTTP != nil:
			return SourceHTTPV2, nil
		case p.RequestContext.RouteKey != "":
			return SourceHTTPV2, nil
		default:
			return SourceLegacyProxy, nil
		}
	}

	return "", apperr.New(apperr.BadRequest, "unrecognized event shape")
}

// RecordHandler is invoked once per matched record/message/notification.
type RecordHandler func(ctx *apptheory.Context) (any, error)

// rulePairKey is the (source, detail_type) selector for a rule handler
// registered without a known rule name.
type rulePairKey struct {
	source     string
	detailType string
}

// Dispatcher holds the selector tables for every non-HTTP, non-socket
// source, plus the collaborators needed to hand HTTP and socket sources off
// to their own subsystems.
type Dispatcher struct {
	queue  map[string]RecordHandler
	table  map[string]RecordHandler
	stream map[string]RecordHandler
	topic  map[string]RecordHandler
	rule   map[string]RecordHandler
	rulePair map[rulePairKey]RecordHandler

	Middleware []middleware.EventHandlerFunc

	Clock apptheory.Clock
	IDs   apptheory.IDSource

	// HTTPApp serves versioned-HTTP and legacy-proxy sources, handing off
	// to the tiered pipeline. Nil means those sources are rejected.
	HTTPApp *apptheory.App

	// SocketRouter serves socket-shaped sources, routing by route_key
	// directly. Nil means socket events are rejected.
	SocketRouter *socket.Router
}

// New constructs an empty Dispatcher. HTTPApp and SocketRouter may be wired
// in afterward via their exported fields.
func New() *Dispatcher {
	return &Dispatcher{
		queue:    map[string]RecordHandler{},
		table:    map[string]RecordHandler{},
		stream:   map[string]RecordHandler{},
		topic:    map[string]RecordHandler{},
		rule:     map[string]RecordHandler{},
		rulePair: map[rulePairKey]RecordHandler{},
		Clock:    apptheory.SystemClock(),
		IDs:      apptheory.UUIDIDSource(),
	}
}

// Queue registers a handler for records whose queue-name-from-ARN matches
// name.
func (d *Dispatcher) Queue(name string, h RecordHandler) { d.queue[name] = h }

// Table registers a handler for records whose table-name-from-stream-ARN
// matches name.
func (d *Dispatcher) Table(name string, h RecordHandler) { d.table[name] = h }

// Stream registers a handler for records whose stream-name-from-ARN
// matches name.
func (d *Dispatcher) Stream(name string, h RecordHandler) { d.stream[name] = h }

// Topic registers a handler for pub/sub records whose topic-name-from-ARN
// matches name.
func (d *Dispatcher) Topic(name string, h RecordHandler) { d.topic[name] = h }

// Rule registers a handler selected by a rule name appearing in the event's
// `resources` list.
func (d *Dispatcher) Rule(name string, h RecordHandler) { d.rule[name] = h }

// RulePair registers a handler selected by an exact (source, detail_type)
// pair, used when the event carries no rule ARN in `resources`.
func (d *Dispatcher) RulePair(source, detailType string, h RecordHandler) {
	d.rulePair[rulePairKey{source: source, detailType: detailType}] = h
}

// newRecordContext builds a bare Context for a non-HTTP, non-socket
// invocation — these sources never pass through the tiered pipeline, so
// there is no routing/CORS/policy step, only the clock/id/scratch carrier
//.
func (d *Dispatcher) newRecordContext(req *canonical.Request) *apptheory.Context {
	return apptheory.NewContext(context.Background(), req, d.Clock, d.IDs)
}

// invoke runs h through the dispatcher's event middleware chain.
func (d *Dispatcher) invoke(ctx *apptheory.Context, h RecordHandler) (any, error) {
	var result any
	var herr error
	terminal := func() error {
		result, herr = h(ctx)
		return herr
	}
	err := middleware.EventChain(ctx, d.Middleware, terminal)
	if err != nil {
		return nil, err
	}
	return result, herr
}

// Dispatch classifies raw and routes it to the matching handler or
// subsystem.
func (d *Dispatcher) Dispatch(raw []byte) (any, error) {
	source, err := Detect(raw)
	if err != nil {
		return nil, err
	}

	switch source {
	case SourceQueue:
		return d.dispatchQueue(raw)
	case SourceTableStream:
		return d.dispatchTableStream(raw)
	case SourceShardStream:
		return d.dispatchShardStream(raw)
	case SourcePubSub:
		return d.dispatchPubSub(raw)
	case SourceRule:
		return d.dispatchRule(raw)
	case SourceSocket:
		if d.SocketRouter == nil {
			return nil, apperr.New(apperr.Internal, "no socket router configured")
		}
		var ev canonical.SocketEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, apperr.New(apperr.BadRequest, "malformed socket event")
		}
		return d.SocketRouter.Dispatch(ev)
	case SourceHTTPV2:
		return d.dispatchHTTPV2(raw)
	case SourceLegacyProxy:
		return d.dispatchLegacyProxy(raw)
	default:
		return nil, fmt.Errorf("dispatch: unhandled source %q", source)
	}
}
