package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dennisdiepolder/monti/kpiquery/internal/metrics"
	"github.com/go-chi/chi/v5"
)

func TestMetricsRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/agentes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/agentes/1", "/agentes/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	want := `kpiquery_http_requests_total{route="/agentes/{id}",status="418"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("expected %s in metrics output", want)
	}
}
