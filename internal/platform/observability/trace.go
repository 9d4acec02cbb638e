package observability

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/indrapalijama/alkitab-api-v3/internal/platform/requestctx"
)

const tracerName = "github.com/indrapalijama/alkitab-api-v3/internal/platform/observability"

var propagator = propagation.TraceContext{}

// Tracer returns the tracer shared by the server and outbound fetches.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// TraceMiddleware continues a W3C traceparent from the caller when present,
// starts a server span and records its identifiers on the request context.
// The traceparent of the server span is echoed back on the response.
func TraceMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := Tracer().Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()

			sc := span.SpanContext()
			info := requestctx.TraceInfo{ProjectID: projectID, Sampled: sc.IsSampled()}
			if sc.IsValid() {
				info.TraceID = sc.TraceID().String()
				info.SpanID = sc.SpanID().String()
				propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))
			}
			ctx = requestctx.WithTrace(ctx, info)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", r.URL.Path),
	}
	if host := r.Host; host != "" {
		attrs = append(attrs, attribute.String("server.address", host))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}
