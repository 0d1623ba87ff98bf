// ABOUTME: HTTP handler state and shared helpers for the health analyzer API
// ABOUTME: Holds the registry, cache, processor, and config used by all endpoints

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fleetops/aerospike-health-analyzer/cache"
	"github.com/fleetops/aerospike-health-analyzer/config"
	"github.com/fleetops/aerospike-health-analyzer/models"
	"github.com/fleetops/aerospike-health-analyzer/services"
)

// Handler carries the shared state for all API endpoints.
type Handler struct {
	cfg       *config.Config
	cache     *cache.Cache
	registry  *services.Registry
	processor *services.Processor
	runner    *services.AsadmRunner

	// detailsGroup collapses concurrent detail-view builds for the same
	// health check into a single computation.
	detailsGroup singleflight.Group
}

// NewHandler wires the API surface. The runner is optional; when nil the
// health endpoint reports the diagnostic tool as unavailable.
func NewHandler(cfg *config.Config, c *cache.Cache, registry *services.Registry, processor *services.Processor, runner *services.AsadmRunner) *Handler {
	return &Handler{
		cfg:       cfg,
		cache:     c,
		registry:  registry,
		processor: processor,
		runner:    runner,
	}
}

func (h *Handler) listTTL() time.Duration {
	return time.Duration(h.cfg.ListTTL) * time.Second
}

// invalidateViews drops cached projections touched by a mutation.
func (h *Handler) invalidateViews(checkID string) {
	h.cache.Invalidate("healthchecks:list")
	h.cache.Invalidate("healthchecks:details:" + checkID)
	h.cache.Invalidate("healthchecks:replication:" + checkID)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func writeErrorDetails(w http.ResponseWriter, message, details string, code int) {
	writeJSON(w, code, models.ErrorResponse{
		Error:   message,
		Details: details,
		Code:    code,
	})
}
