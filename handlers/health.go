// ABOUTME: Service health endpoint reporting collaborator availability
// ABOUTME: Probes the asadm binary and reports whether AI parsing is configured

package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports whether the processing collaborators are usable. The
// service stays up without them; uploads fail at processing time instead.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "ok",
		"asadm":     "not_configured",
		"ai_parser": "not_configured",
	}

	if h.runner != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if version, err := h.runner.Available(ctx); err == nil {
			resp["asadm"] = "ok"
			resp["asadm_version"] = version
		} else {
			resp["asadm"] = "unavailable"
		}
	}

	if h.cfg.ParserConfigured() {
		resp["ai_parser"] = "ok"
		resp["ai_model"] = h.cfg.AnthropicModel
	}

	writeJSON(w, http.StatusOK, resp)
}
