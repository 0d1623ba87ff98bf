// ABOUTME: Tests for the CORS middleware
// ABOUTME: Covers wildcard, allow-listed origins, and OPTIONS preflight

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCORS_Wildcard(t *testing.T) {
	handler := CORS([]string{"*"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthchecks", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestCORS_AllowListedOrigin(t *testing.T) {
	handler := CORS([]string{"https://fleet.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthchecks", nil)
	req.Header.Set("Origin", "https://fleet.example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://fleet.example.com" {
		t.Errorf("Expected the allow-listed origin echoed, got %q", got)
	}
	if rec.Header().Get("Vary") != "Origin" {
		t.Error("Expected Vary: Origin for per-origin responses")
	}
}

func TestCORS_UnknownOriginGetsNoHeader(t *testing.T) {
	handler := CORS([]string{"https://fleet.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthchecks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no allow-origin header for unknown origin, got %q", got)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	handler := CORS([]string{"*"})(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/healthchecks", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
	if called {
		t.Error("Expected preflight to skip the wrapped handler")
	}
}
