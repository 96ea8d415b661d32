package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/medconnect/clinic-platform/internal/observability/metrics"
)

func TestRequestLoggerSeesChiRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(nil, nil))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chimiddleware.GetReqID(r.Context())))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	if rec.Body.Len() == 0 {
		t.Fatalf("expected a request id in the handler context")
	}
}

func TestRequestLoggerLabelsLatencyByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewClinicMetrics(reg)

	r := chi.NewRouter()
	r.Use(RequestLogger(nil, m))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/items/1", "/items/2", "/items/3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	// Three distinct paths on the same route must collapse into one series.
	got, err := testutil.GatherAndCount(reg, "medconnect_http_request_latency_seconds")
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 latency series, got %d", got)
	}
}
