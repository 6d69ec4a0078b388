//go:build oteltracing

// Package gctrace wraps collect and hibernate operations in OpenTelemetry
// spans, gated behind the oteltracing build tag to keep distributed tracing
// entirely out of default builds. Literal collection is not wrapped.
//
// usage: go build -tags oteltracing ./...
package gctrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("procgc/gc")

// Span starts a span named op for a collection against pid, returning a
// context carrying it and a function to end it.
func Span(ctx context.Context, op, pid string) (context.Context, func()) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attribute.String("pid", pid)))
	return ctx, func() { span.End() }
}

// Annotate attaches collection-result attributes to the current span.
func Annotate(ctx context.Context, copied int, done bool) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("gc.words_copied", copied),
		attribute.Bool("gc.done", done),
	)
}
