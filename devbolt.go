package devbolt

import (
	"context"

	"github.com/ModelRed/devbolt/internal/tracing"
)

// Version is the SDK version reported in diagnostics.
const Version = "0.3.0"

// InitTracing configures the global OpenTelemetry tracer provider with an
// OTLP HTTP exporter when OTEL_EXPORTER_OTLP_ENDPOINT is set; otherwise
// tracing stays disabled and the returned shutdown is a no-op. serviceName
// identifies the embedding application; when empty the service name falls
// back to OTEL_SERVICE_NAME and then to "devbolt". Call the returned
// function on application shutdown to flush pending spans.
func InitTracing(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	return tracing.Init(ctx, serviceName, Version)
}
