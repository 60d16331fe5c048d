// Package trace is a thin span helper over the globally registered
// OpenTelemetry provider (set up by logger.Init), so observability wrappers
// do not depend on the logger package directly.
package trace

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func enabled() bool {
	if v := os.Getenv("LOG_TRACING_ENABLED"); v != "" {
		return v == "true"
	}
	return true
}

// StartSpan starts a span on the global tracer. When tracing is disabled it
// returns the span already on the context, which is a no-op span when there
// is none.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return otel.Tracer("momentum-trading-bot").Start(ctx, spanName, opts...)
}
