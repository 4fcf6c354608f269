package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// StartRequest opens the client span of one request, tagged with the run.
func (p *Provider) StartRequest(ctx context.Context, method, target string) (context.Context, trace.Span) {
	ctx, span := p.tracerOrNoop().Start(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindClient))
	if !span.IsRecording() {
		return ctx, span
	}
	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		semconv.URLFull(target),
	)
	if p != nil {
		span.SetAttributes(p.runAttrs...)
	}
	return ctx, span
}

// Inject writes the trace context of ctx into h when propagation is on.
func (p *Provider) Inject(ctx context.Context, h http.Header) {
	if !p.Propagates() {
		return
	}
	p.propagator.Inject(ctx, propagation.HeaderCarrier(h))
}

// EndSpan closes a request span. Transport errors and 5xx responses mark it
// failed; any other response, 4xx included, is Ok.
func EndSpan(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCode(statusCode))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case statusCode >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
