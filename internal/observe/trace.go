package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the sfxgen tracer.
const tracerName = "github.com/MrWong99/sfxgen"

// Tracer returns the tracer clip spans are recorded on. Spans reach an
// exporter only after [InitProvider] has installed the sfxgen provider;
// before that they are dropped.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span such as the generator's per-clip "sfxgen.clip" and
// returns it with the derived context. The caller must end the span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// Logger returns the default logger tagged with the trace_id and span_id of
// the span in ctx, so a clip's log lines can be matched to its span. Without
// a span it returns slog.Default() unchanged.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
