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

// Package observability wires the P2 hooks.Observability sink onto
// structured logging, an OpenTelemetry/Prometheus counter, and an
// OpenTelemetry tracer — the ambient stack carried for every request
// regardless of which domain feature is in scope.
package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/theory-cloud/AppTheory/hooks"
	"github.com/theory-cloud/AppTheory/sanitize"
)

// Sink implements hooks.Observability over a structured logger, an otel
// counter instrument, and an otel tracer. Each of the three fields may be
// left nil; a nil field's record is simply dropped for that channel, which
// lets a caller enable only the channels it wants without a separate
// "noop" type per combination.
type Sink struct {
	Logger  *slog.Logger
	Counter metric.Int64Counter
	Tracer  trace.Tracer
}

var _ hooks.Observability = (*Sink)(nil)

// New builds a Sink with serviceName attached to every emitted span and a
// Meter-derived "apptheory.request" counter (the literal metric
// name). logger may be nil to fall back to slog.Default().
func New(serviceName string, meterProvider metric.MeterProvider, tracerProvider trace.TracerProvider, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	meter := meterProvider.Meter(serviceName)
	counter, err := meter.Int64Counter("apptheory.request",
		metric.WithDescription("count of completed AppTheory invocations"))
	if err != nil {
		return nil, err
	}
	return &Sink{
		Logger:  logger,
		Counter: counter,
		Tracer:  tracerProvider.Tracer(serviceName),
	}, nil
}

// Log implements hooks.Observability.
func (s *Sink) Log(r hooks.LogRecord) {
	if s == nil || s.Logger == nil {
		return
	}
	level := slog.LevelInfo
	switch r.Level {
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "debug":
		level = slog.LevelDebug
	}
	s.Logger.Log(context.Background(), level, r.Event,
		"request_id", r.RequestID,
		"tenant_id", r.TenantID,
		"method", r.Method,
		"path", r.Path,
		"status", r.Status,
		"error_code", r.ErrorCode,
	)
}

// Metric implements hooks.Observability, recording against the
// "apptheory.request" counter with every tag sanitized into a valid otel
// attribute key (the dimension naming).
func (s *Sink) Metric(m hooks.MetricRecord) {
	if s == nil || s.Counter == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(m.Tags))
	for k, v := range m.Tags {
		name := sanitize.DimensionName(k)
		if name == "" {
			continue
		}
		attrs = append(attrs, attribute.String(name, v))
	}
	s.Counter.Add(context.Background(), int64(m.Value), metric.WithAttributes(attrs...))
}

// Span implements hooks.Observability by opening and immediately ending a
// span, since the tiered pipeline only reports completed invocations —
// there is no live request to attach a long-lived span to by the time P2
// finalizes.
func (s *Sink) Span(r hooks.SpanRecord) {
	if s == nil || s.Tracer == nil {
		return
	}
	_, span := s.Tracer.Start(context.Background(), r.Name)
	defer span.End()
	for k, v := range r.Attributes {
		name := sanitize.DimensionName(k)
		if name == "" {
			continue
		}
		span.SetAttributes(attributeFor(name, v))
	}
}

func attributeFor(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	case bool:
		return attribute.Bool(key, val)
	default:
		return attribute.String(key, "")
	}
}
