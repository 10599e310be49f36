package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	allowedOrigins := []string{"http://localhost:5173", "http://tablero.example.com"}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"respuesta":"ok"}`))
	})

	corsHandler := CORS(allowedOrigins)(handler)

	tests := []struct {
		name           string
		origin         string
		method         string
		preflightFor   string
		expectedOrigin string
	}{
		{
			name:           "allowed origin",
			origin:         "http://localhost:5173",
			method:         http.MethodPost,
			expectedOrigin: "http://localhost:5173",
		},
		{
			name:           "another allowed origin",
			origin:         "http://tablero.example.com",
			method:         http.MethodGet,
			expectedOrigin: "http://tablero.example.com",
		},
		{
			name:   "disallowed origin",
			origin: "http://evil.com",
			method: http.MethodPost,
		},
		{
			name:           "preflight for POST",
			origin:         "http://localhost:5173",
			method:         http.MethodOptions,
			preflightFor:   http.MethodPost,
			expectedOrigin: "http://localhost:5173",
		},
		{
			name:         "preflight for DELETE refused",
			origin:       "http://localhost:5173",
			method:       http.MethodOptions,
			preflightFor: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/consultar", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflightFor != "" {
				req.Header.Set("Access-Control-Request-Method", tt.preflightFor)
			}

			rec := httptest.NewRecorder()
			corsHandler.ServeHTTP(rec, req)

			acao := rec.Header().Get("Access-Control-Allow-Origin")
			if acao != tt.expectedOrigin {
				t.Errorf("expected Access-Control-Allow-Origin %q, got %q", tt.expectedOrigin, acao)
			}
		})
	}
}
