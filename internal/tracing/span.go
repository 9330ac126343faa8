package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartRequestSpan starts a client span for one attempt by workerID.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, target string, workerID int, seq int64) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "GET",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.full", target),
		attribute.Int("simpleload.worker_id", workerID),
		attribute.Int64("simpleload.request_seq", seq),
	)
	return ctx, span
}

// EndSpan finishes a span, recording the response status and any error.
func EndSpan(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
