// ABOUTME: JSON error response helper for middleware
// ABOUTME: Keeps middleware rejections in the same envelope as handler errors

package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes an error response as JSON with the given status
// code, matching the {error, code} envelope of handlers.writeError.
func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{
		Error: message,
		Code:  code,
	})
}
