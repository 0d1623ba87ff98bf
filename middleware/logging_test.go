// ABOUTME: Tests for the request logging middleware
// ABOUTME: Verifies correlation IDs and status capture

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogRequest_SetsRequestID(t *testing.T) {
	handler := LogRequest(okHandler)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthchecks", nil))

	id := rec.Header().Get("X-Request-ID")
	if len(id) != 16 {
		t.Errorf("Expected 16-char hex request ID, got %q", id)
	}
}

func TestLogRequest_UniqueIDs(t *testing.T) {
	handler := LogRequest(okHandler)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get("X-Request-ID")
		if seen[id] {
			t.Fatalf("Duplicate request ID: %s", id)
		}
		seen[id] = true
	}
}

func TestLogRequest_PassesThroughBody(t *testing.T) {
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Body.String() != `{"ok":true}` {
		t.Errorf("Expected body passed through unmodified, got %q", rec.Body.String())
	}
}

func TestLogRequest_PassesThroughStatus(t *testing.T) {
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected wrapped status preserved, got %d", rec.Code)
	}
}
