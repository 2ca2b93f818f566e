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
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers bundles the constructed otel SDK providers a Sink needs, plus
// the Prometheus scrape handler, so a caller can wire one into both the
// Sink and an HTTP /metrics route. Unlike an auto-started metrics server,
// the handler is left for the caller to mount (cmd/apptheoryd does this).
type Providers struct {
	Meter   *sdkmetric.MeterProvider
	Tracer  *sdktrace.TracerProvider
	Handler http.Handler
}

// NewPrometheusProviders builds a MeterProvider backed by a dedicated
// Prometheus registry (avoiding collisions with the global registry) and a
// TracerProvider with the default (no-export) span processor set, suitable
// for a service that only cares about the span attributes it builds
// in-process rather than shipping them to a collector.
func NewPrometheusProviders() (*Providers, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create Prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	tracerProvider := sdktrace.NewTracerProvider()

	return &Providers{
		Meter:   meterProvider,
		Tracer:  tracerProvider,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Shutdown flushes and releases the underlying SDK providers.
func (p *Providers) Shutdown() error {
	ctx := context.Background()
	if err := p.Meter.Shutdown(ctx); err != nil {
		return err
	}
	if err := p.Tracer.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
