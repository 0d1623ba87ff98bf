// ABOUTME: Composes the per-route middleware stack (logging, CORS, rate limit)
// ABOUTME: First middleware in the list is the outermost wrapper

package middleware

import "net/http"

// Chain wraps h with the given middleware, outermost first, so
// Chain(h, LogRequest, cors, limit) serves as LogRequest(cors(limit(h))).
// Every route in the API goes through a chain built this way.
func Chain(h http.HandlerFunc, stack ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}
