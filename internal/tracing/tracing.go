// Package tracing provides opt-in OpenTelemetry tracing support for the
// devbolt SDK. Tracing is enabled only when the OTEL_EXPORTER_OTLP_ENDPOINT
// environment variable is set; otherwise [Init] returns a no-op shutdown
// function and evaluation spans stay no-ops.
package tracing

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultServiceName = "devbolt"

// Init configures the global OpenTelemetry tracer provider with an OTLP HTTP
// exporter. serviceName identifies the embedding application; when empty it
// falls back to OTEL_SERVICE_NAME and then to "devbolt". sdkVersion is
// recorded as the service.version resource attribute.
//
// If OTEL_EXPORTER_OTLP_ENDPOINT is not set, tracing is disabled and a no-op
// shutdown function is returned. The returned function should be called on
// application shutdown to flush pending spans.
func Init(ctx context.Context, serviceName, sdkVersion string) (shutdown func(context.Context) error, err error) {
	if !enabled() {
		return func(context.Context) error { return nil }, nil
	}

	res, err := newResource(serviceName, sdkVersion)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func enabled() bool {
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) != ""
}

func newResource(serviceName, sdkVersion string) (*resource.Resource, error) {
	if serviceName = strings.TrimSpace(serviceName); serviceName == "" {
		serviceName = strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME"))
	}
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	attrs := []resource.Option{resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(sdkVersion),
	)}
	res, err := resource.New(context.Background(), attrs...)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	merged, err := resource.Merge(resource.Default(), res)
	if err != nil {
		return nil, fmt.Errorf("merge resource: %w", err)
	}
	return merged, nil
}
