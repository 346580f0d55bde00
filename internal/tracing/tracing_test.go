package tracing

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceIDFromContext(t *testing.T) {
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Fatalf("trace ID %q from a context with no span, want empty", got)
	}

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	got := TraceIDFromContext(ctx)
	if got == "" {
		t.Fatal("no trace ID from a recording span")
	}
	if len(got) != 32 {
		t.Fatalf("trace ID %q is not 32 hex chars", got)
	}
}
