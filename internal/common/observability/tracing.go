package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracing holds the tracer provider wired to a Jaeger collector.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// NewTracing sets up the global tracer provider. An empty collector URL
// disables export; StartSpan then yields no-op spans.
func NewTracing(serviceName, collectorURL string) (*Tracing, error) {
	if collectorURL == "" {
		return &Tracing{}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorURL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)
	otel.SetTracerProvider(provider)

	return &Tracing{provider: provider}, nil
}

// StartSpan starts a span on the global provider. Storage and integration
// calls use it so a job's external round trips show up in the trace.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("grundbuch-workers").Start(ctx, name)
}

// RecordError attaches the error to the span in ctx.
func RecordError(ctx context.Context, err error) {
	trace.SpanFromContext(ctx).RecordError(err)
}

func (t *Tracing) Shutdown() {
	if t.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.provider.Shutdown(ctx)
	}
}
