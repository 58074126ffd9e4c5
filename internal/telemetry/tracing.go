package telemetry

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/crmarques/zpasync/faults"
)

const serviceName = "zpasync"

// Provider owns the process tracer provider. A zero endpoint leaves the
// global no-op provider in place.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
}

type Options struct {
	Endpoint string
	Version  string
	RunID    string
}

func Setup(ctx context.Context, options Options) (*Provider, error) {
	endpoint := strings.TrimSpace(options.Endpoint)
	if endpoint == "" {
		return &Provider{}, nil
	}

	exporterOptions := []otlptracegrpc.Option{}
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		exporterOptions = append(exporterOptions, otlptracegrpc.WithEndpoint(parsed.Host))
		if parsed.Scheme == "http" {
			exporterOptions = append(exporterOptions, otlptracegrpc.WithInsecure())
		}
	} else {
		exporterOptions = append(exporterOptions, otlptracegrpc.WithEndpoint(endpoint))
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOptions...)
	if err != nil {
		return nil, faults.NewTypedError(faults.TransportError, "failed to create otlp trace exporter", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", options.Version),
		attribute.String("zpasync.run_id", options.RunID),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tracerProvider)
	return &Provider{tracerProvider: tracerProvider}, nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tracerProvider == nil {
		return nil
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return faults.NewTypedError(faults.TransportError, "failed to flush traces", err)
	}
	return nil
}

func (p *Provider) Enabled() bool {
	return p != nil && p.tracerProvider != nil
}
