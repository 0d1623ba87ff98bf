// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path with {wildcards} for PathValue
	Handler http.HandlerFunc // Handler function
}

// Upload reports whether this route accepts file uploads; upload routes get
// the stricter rate limit.
func (r Route) Upload() bool {
	return r.Path == "/api/v1/healthchecks/{id}/regions/{region}/uploads"
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health & Status
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Health checks
		{Method: http.MethodPost, Path: "/api/v1/healthchecks", Handler: h.CreateHealthCheck},
		{Method: http.MethodGet, Path: "/api/v1/healthchecks", Handler: h.ListHealthChecks},
		{Method: http.MethodGet, Path: "/api/v1/healthchecks/{id}", Handler: h.GetHealthCheckDetails},
		{Method: http.MethodDelete, Path: "/api/v1/healthchecks/{id}", Handler: h.DeleteHealthCheck},
		{Method: http.MethodGet, Path: "/api/v1/healthchecks/{id}/replication", Handler: h.GetReplication},

		// Regions & uploads
		{Method: http.MethodPost, Path: "/api/v1/healthchecks/{id}/regions", Handler: h.AddRegion},
		{Method: http.MethodPost, Path: "/api/v1/healthchecks/{id}/regions/{region}/uploads", Handler: h.UploadFiles},
		{Method: http.MethodGet, Path: "/api/v1/healthchecks/{id}/regions/{region}/clusters", Handler: h.QueryClusters},

		// Cluster results
		{Method: http.MethodGet, Path: "/api/v1/healthchecks/{id}/clusters/{key}", Handler: h.GetClusterDetail},
		{Method: http.MethodPost, Path: "/api/v1/healthchecks/{id}/clusters/{key}/retry", Handler: h.RetryCluster},
		{Method: http.MethodDelete, Path: "/api/v1/healthchecks/{id}/clusters/{key}", Handler: h.DeleteCluster},
	}
}

// RegisterRoutes installs every route on mux with the given middleware
// wrapping applied per route.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, wrap func(Route) http.HandlerFunc) {
	for _, route := range h.Routes() {
		handler := route.Handler
		if wrap != nil {
			handler = wrap(route)
		}
		mux.HandleFunc(route.Method+" "+route.Path, handler)
	}
}
