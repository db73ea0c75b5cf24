// Package telemetry sets up tracing for a run.
package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName = "ghcommit"
	tracerName  = "github.com/cchalm/ghcommit"
)

// Config holds the configuration for telemetry
type Config struct {
	Enabled        bool
	Endpoint       string // OTLP/HTTP collector URL
	ServiceVersion string
}

// Provider manages the tracing pipeline of a single run
type Provider struct {
	runID string
	tp    *sdktrace.TracerProvider // nil when telemetry is disabled
}

// NewProvider creates a new telemetry provider. When telemetry is disabled the provider hands out no-op tracers
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		logger.Debug("Telemetry disabled")
		return &Provider{runID: NewRunID()}, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(config.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	logger.WithField("endpoint", config.Endpoint).Info("Telemetry enabled")
	return NewProviderWithExporter(exporter, config.ServiceVersion), nil
}

// NewProviderWithExporter creates a provider that batches spans to the given exporter
func NewProviderWithExporter(exporter sdktrace.SpanExporter, serviceVersion string) *Provider {
	runID := NewRunID()
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
		attribute.String("ghcommit.run_id", runID),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return &Provider{runID: runID, tp: tp}
}

// RunID returns the unique id of this run
func (p *Provider) RunID() string {
	return p.runID
}

// Tracer returns the tracer used to record a run
func (p *Provider) Tracer() trace.Tracer {
	if p.tp == nil {
		return noop.NewTracerProvider().Tracer(tracerName)
	}
	return p.tp.Tracer(tracerName)
}

// Shutdown flushes pending spans and shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	logger.Debug("Shutting down telemetry provider")
	return p.tp.Shutdown(ctx)
}

// NewRunID generates a new run UUID
func NewRunID() string {
	return uuid.New().String()
}
