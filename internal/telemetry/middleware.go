package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WithSpan wraps fn in a span named after the component/operation pair,
// recording the error (if any) and setting the span status accordingly.
// It is the non-RPC analog of a server interceptor: every stage of the
// simulation driver (colgen, pricing, rmp, node forwarding) calls through
// this instead of a gRPC handler chain.
func WithSpan(ctx context.Context, component, operation string, fn func(ctx context.Context) error) error {
	ctx, span := StartSpan(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	span.SetAttributes(attribute.String("component", component))

	err := fn(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
