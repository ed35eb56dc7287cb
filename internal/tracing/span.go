package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartRunSpan starts a new span covering one stress run.
func StartRunSpan(ctx context.Context, tracer trace.Tracer, index int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("run %d", index),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.Int("monkeyfire.run_index", index),
	)
	return ctx, span
}

// StartPhaseSpan starts a child span for one phase of a run.
func StartPhaseSpan(ctx context.Context, tracer trace.Tracer, phase string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "phase "+phase)
	span.SetAttributes(
		attribute.String("monkeyfire.phase", phase),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
