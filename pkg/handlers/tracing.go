package handlers

import (
	"context"
	"net/http"

	"stormbringer/pkg/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware creates HTTP tracing middleware using OpenTelemetry
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	// If telemetry is disabled, return a no-op middleware
	if !config.GetBoolEnv("ENABLE_TELEMETRY", false) {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return otelhttp.NewMiddleware(
		serviceName,
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithPropagators(otel.GetTextMapPropagator()),
	)
}

// StartSpan starts a child span for a service operation. The returned span is
// a no-op when telemetry is disabled.
func StartSpan(ctx context.Context, operationName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if !config.GetBoolEnv("ENABLE_TELEMETRY", false) {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := otel.Tracer("stormbringer/services").Start(ctx, operationName)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	return ctx, span
}
