// ABOUTME: Tests for the declarative route table
// ABOUTME: Validates methods, path shape, and upload-route detection

package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestRoutes_AllUnderAPIPrefix(t *testing.T) {
	h := &Handler{}
	routes := h.Routes()

	if len(routes) == 0 {
		t.Fatal("Routes() returned empty slice")
	}
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/api/v1/") {
			t.Errorf("Route %s lacks /api/v1/ prefix", route.Path)
		}
		if route.Handler == nil {
			t.Errorf("Route %s %s has nil handler", route.Method, route.Path)
		}
		switch route.Method {
		case http.MethodGet, http.MethodPost, http.MethodDelete:
		default:
			t.Errorf("Route %s has unexpected method %s", route.Path, route.Method)
		}
	}
}

func TestRoutes_NoDuplicates(t *testing.T) {
	h := &Handler{}
	seen := make(map[string]bool)
	for _, route := range h.Routes() {
		key := route.Method + " " + route.Path
		if seen[key] {
			t.Errorf("Duplicate route registration: %s", key)
		}
		seen[key] = true
	}
}

func TestRoutes_UploadDetection(t *testing.T) {
	h := &Handler{}
	var uploads int
	for _, route := range h.Routes() {
		if route.Upload() {
			uploads++
			if route.Method != http.MethodPost {
				t.Errorf("Upload route should be POST, got %s", route.Method)
			}
		}
	}
	if uploads != 1 {
		t.Errorf("Expected exactly one upload route, got %d", uploads)
	}
}
