package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys
const (
	AttrKeyDatasetID   = "datahub.dataset.id"
	AttrKeySegment     = "datahub.segment.name"
	AttrKeyDraftNumber = "datahub.draft.number"
	AttrKeyCommitID    = "datahub.commit.id"
	AttrKeyResource    = "datahub.resource"
	AttrKeyStatusCode  = "http.status_code"
)

type ctxKey struct{}

// TracerFromCtx returns the tracer set for the current context.
// If no tracer is set in ctx, a no-op tracer is returned.
func TracerFromCtx(ctx context.Context) trace.Tracer {
	tracer, ok := ctx.Value(ctxKey{}).(trace.Tracer)
	if !ok {
		return trace.NewNoopTracerProvider().Tracer("")
	}
	return tracer
}

// SetTracer returns a new context with the given tracer associated with it.
// Setting the tracer to nil inserts a no-op tracer.
func SetTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	if existing, ok := ctx.Value(ctxKey{}).(trace.Tracer); ok && existing == tracer {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, tracer)
}

// Start is a shortcut for retrieving the context tracer and calling Start.
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return TracerFromCtx(ctx).Start(ctx, spanName, opts...)
}

// SetSpanError records err on the span carried by ctx
func SetSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Segment attributes for a span working on a dataset segment
func Segment(datasetID, segment string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrKeyDatasetID, datasetID),
		attribute.String(AttrKeySegment, segment),
	}
}
