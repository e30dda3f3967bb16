// Package observability initializes distributed tracing for the
// pipeline. Tracing is opt-in; when disabled every span is a no-op.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/config"
)

const (
	defaultBatchTimeout = 5 * time.Second
	serviceName         = "codreamer"
)

// InitTracing initializes tracing from the config section. When tracing
// is disabled it returns a provider that records nothing; when enabled
// it exports spans over OTLP gRPC to the configured endpoint.
//
// The returned shutdown function flushes pending spans; call it on exit.
func InitTracing(ctx context.Context, cfg config.TracingConfig) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Shutdown, nil
	}
	if cfg.Endpoint == "" {
		return nil, nil, fmt.Errorf("tracing enabled but no endpoint configured")
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		))
	if err != nil {
		return nil, nil, fmt.Errorf("building trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(defaultBatchTimeout)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, tp.Shutdown, nil
}
