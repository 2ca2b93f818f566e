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

package observability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/theory-cloud/AppTheory/hooks"
)

func TestSinkLogWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := &Sink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	sink.Log(hooks.LogRecord{
		Level: "warn", Event: "request.completed", RequestID: "r1",
		Method: "GET", Path: "/widgets", Status: 429, ErrorCode: "app.rate_limited",
	})

	out := buf.String()
	assert.Contains(t, out, "request.completed")
	assert.Contains(t, out, "app.rate_limited")
	assert.Contains(t, out, "WARN")
}

func TestSinkMetricSanitizesTagNames(t *testing.T) {
	counter, err := noopmetric.NewMeterProvider().Meter("test").Int64Counter("apptheory.request")
	require.NoError(t, err)
	sink := &Sink{Counter: counter}

	// Should not panic even with a tag name containing invalid characters.
	sink.Metric(hooks.MetricRecord{Name: "apptheory.request", Value: 1, Tags: map[string]string{"Error Code": "app.rate_limited"}})
}

func TestSinkSpanDoesNotPanicWithoutTracer(t *testing.T) {
	sink := &Sink{}
	sink.Span(hooks.SpanRecord{Name: "http GET /widgets"})
}

func TestSinkSpanRecordsAttributes(t *testing.T) {
	sink := &Sink{Tracer: nooptrace.NewTracerProvider().Tracer("test")}
	sink.Span(hooks.SpanRecord{
		Name: "http GET /widgets",
		Attributes: map[string]any{
			"http.method": "GET",
			"http.status_code": 200,
		},
	})
}

func TestNewBuildsCounterAgainstMeter(t *testing.T) {
	sink, err := New("test-service", noopmetric.NewMeterProvider(), nooptrace.NewTracerProvider(), nil)
	require.NoError(t, err)
	require.NotNil(t, sink.Counter)
	require.NotNil(t, sink.Tracer)
	require.NotNil(t, sink.Logger)
}

func TestDefaultSinkIsUsableBeforeSetDefault(t *testing.T) {
	s := Default()
	require.NotNil(t, s)
	s.Log(hooks.LogRecord{Event: "smoke"})
}

func TestSetDefaultInstallsSink(t *testing.T) {
	var buf bytes.Buffer
	custom := &Sink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	SetDefault(custom)
	defer SetDefault(&Sink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})

	Default().Log(hooks.LogRecord{Event: "custom-sink"})
	assert.Contains(t, buf.String(), "custom-sink")
}
