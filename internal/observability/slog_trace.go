package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// traceHandler stamps every record logged with a span in its context with
// trace_id, span_id and, for sampled spans, trace_sampled.
type traceHandler struct {
	slog.Handler
}

func withTrace(next slog.Handler) slog.Handler {
	return traceHandler{Handler: next}
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			r.AddAttrs(slog.Bool("trace_sampled", true))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withTrace(h.Handler.WithAttrs(attrs))
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return withTrace(h.Handler.WithGroup(name))
}
