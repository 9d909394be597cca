// Package telemetry wires an OTEL tracer provider (exported to
// Jaeger) and a Prometheus metrics registry, adapted from the
// platform-wide telemetry bootstrap used across the rest of the
// stack.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kcenon/threadmon/internal/config"
)

// Telemetry bundles the tracer provider and the Prometheus registry
// backing the metrics exporter's Prometheus path.
type Telemetry struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	registry *prometheus.Registry
}

// New builds a Telemetry instance from cfg, initializing Jaeger
// tracing and the default Go/process metrics collectors when enabled.
func New(cfg config.TelemetryConfig) (*Telemetry, error) {
	t := &Telemetry{registry: prometheus.NewRegistry()}

	if cfg.TracingEnabled {
		provider, err := initTracer(cfg.ServiceName, cfg.JaegerEndpoint)
		if err != nil {
			return nil, fmt.Errorf("telemetry: initialize tracer: %w", err)
		}
		t.provider = provider
		t.tracer = otel.Tracer(cfg.ServiceName)
	}

	if cfg.MetricsEnabled {
		t.registry.MustRegister(prometheus.NewGoCollector())
		t.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	return t, nil
}

func initTracer(serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// Tracer returns the configured tracer, or a no-op tracer if tracing
// was disabled.
func (t *Telemetry) Tracer() trace.Tracer {
	if t.tracer == nil {
		return otel.Tracer("")
	}
	return t.tracer
}

// MetricsHandler returns the HTTP handler serving this Telemetry's
// Prometheus registry.
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying Prometheus registry so ambient
// metrics.Metric values can be bridged onto it if desired.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

// Close shuts down the tracer provider, flushing any pending spans.
func (t *Telemetry) Close() error {
	if t.provider != nil {
		return t.provider.Shutdown(context.Background())
	}
	return nil
}
