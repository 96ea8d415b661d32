package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medconnect/clinic-platform/internal/observability/metrics"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

var httpTracer = otel.Tracer("medconnect.internal.http")

// RequestLogger emits structured logs for every HTTP request and records
// request latency when metrics are configured. The request id comes from
// chi's RequestID middleware, which must be mounted before this one.
func RequestLogger(logger *logging.Logger, m *metrics.ClinicMetrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := httpTracer.Start(r.Context(), "http.request")
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))

			elapsed := time.Since(start)
			route := r.URL.Path
			// The route pattern is only resolved after the handler runs.
			// Using it instead of the raw path keeps metric cardinality
			// bounded.
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			reqID := chimiddleware.GetReqID(r.Context())
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("request.id", reqID),
			)
			m.ObserveHTTPLatency(r.Method, route, elapsed.Seconds())
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
				"duration_ms", elapsed.Milliseconds(),
			)
		})
	}
}
