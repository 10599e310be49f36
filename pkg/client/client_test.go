package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/consultar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Authorization") == "Bearer expired" {
			http.Error(w, "Unauthorized: token expired", http.StatusUnauthorized)
			return
		}
		var req types.QueryRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.QueryResponse{Answer: "eco: " + req.Question})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAsk(t *testing.T) {
	srv := newTestServer(t)

	answer, err := NewClient(srv.URL+"/").Ask(context.Background(), "tasa de cierre")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "eco: tasa de cierre" {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestAskUnauthorized(t *testing.T) {
	srv := newTestServer(t)

	if _, err := NewClient(srv.URL).WithToken("expired").Ask(context.Background(), "llamadas"); err == nil {
		t.Error("expected error for 401 response")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	if err := NewClient(srv.URL).Health(context.Background()); err != nil {
		t.Errorf("expected healthy service, got %v", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	if err := NewClient(closed.URL).Health(context.Background()); err == nil {
		t.Error("expected error for an unreachable service")
	}
}
