// ABOUTME: Health check lifecycle endpoints: create, list, details, regions, delete
// ABOUTME: List and detail views are cached; mutations invalidate the cached projections

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fleetops/aerospike-health-analyzer/models"
	"github.com/fleetops/aerospike-health-analyzer/services"
)

// CreateHealthCheck starts a new fleet review for a customer.
func (h *Handler) CreateHealthCheck(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHealthCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	hc, err := h.registry.CreateHealthCheck(req.CustomerName, req.Regions)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.cache.Invalidate("healthchecks:list")
	writeJSON(w, http.StatusCreated, hc)
}

// ListHealthChecks returns summary projections of every health check,
// newest first. The response is cached for the list TTL.
func (h *Handler) ListHealthChecks(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get("healthchecks:list"); found {
		slog.Debug("Health check list cache hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	checks := h.registry.ListHealthChecks()
	summaries := make([]models.HealthCheckSummary, 0, len(checks))
	for _, hc := range checks {
		summary := models.HealthCheckSummary{
			ID:           hc.ID,
			CustomerName: hc.CustomerName,
			CreatedAt:    hc.CreatedAt,
			RegionCount:  len(hc.Regions),
		}
		for _, region := range hc.Regions {
			summary.ClusterCount += len(region.Clusters)
			for _, c := range region.Clusters {
				summary.Statuses.Add(c.Status)
			}
		}
		summaries = append(summaries, summary)
	}

	h.cache.PutTTL("healthchecks:list", summaries, h.listTTL())
	writeJSON(w, http.StatusOK, summaries)
}

// GetHealthCheckDetails returns the full detail view: every region with its
// rollup, plus the fleet-wide summary. Concurrent requests for the same
// health check share one computation.
func (h *Handler) GetHealthCheckDetails(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")
	cacheKey := "healthchecks:details:" + checkID

	if cached, found := h.cache.Get(cacheKey); found {
		slog.Debug("Health check details cache hit", "check_id", checkID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	value, err, _ := h.detailsGroup.Do(checkID, func() (interface{}, error) {
		hc, err := h.registry.GetHealthCheck(checkID)
		if err != nil {
			return nil, err
		}

		fleet, regionSummaries := models.SummarizeFleet(hc)
		details := models.HealthCheckDetails{
			ID:           hc.ID,
			CustomerName: hc.CustomerName,
			CreatedAt:    hc.CreatedAt,
			Fleet:        fleet,
		}
		for i, region := range hc.Regions {
			details.Regions = append(details.Regions, models.RegionDetails{
				Name:     region.Name,
				Clusters: region.Clusters,
				Summary:  regionSummaries[i],
			})
		}

		h.cache.PutTTL(cacheKey, details, h.listTTL())
		return details, nil
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, "Health check not found", http.StatusNotFound)
			return
		}
		writeErrorDetails(w, "Failed to build health check details", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, value)
}

// AddRegion adds a named region to an existing health check.
func (h *Handler) AddRegion(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")

	var req models.AddRegionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.registry.AddRegion(checkID, req.Name)
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, "Health check not found", http.StatusNotFound)
		return
	case errors.Is(err, services.ErrDuplicateRegion):
		writeError(w, "Region already exists", http.StatusConflict)
		return
	case err != nil:
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.invalidateViews(checkID)
	hc, err := h.registry.GetHealthCheck(checkID)
	if err != nil {
		writeError(w, "Health check not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, hc)
}

// DeleteHealthCheck removes a health check and everything under it. Any
// in-flight processing jobs for its clusters are cancelled; their late
// completions are discarded.
func (h *Handler) DeleteHealthCheck(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")

	hc, err := h.registry.GetHealthCheck(checkID)
	if err != nil {
		writeError(w, "Health check not found", http.StatusNotFound)
		return
	}
	for _, region := range hc.Regions {
		for _, c := range region.Clusters {
			h.processor.Cancel(c.ResultKey)
		}
	}

	if err := h.registry.DeleteHealthCheck(checkID); err != nil {
		writeError(w, "Health check not found", http.StatusNotFound)
		return
	}

	h.invalidateViews(checkID)
	w.WriteHeader(http.StatusNoContent)
}

// GetReplication returns the per-namespace replication classification
// across the health check's regions.
func (h *Handler) GetReplication(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")
	cacheKey := "healthchecks:replication:" + checkID

	if cached, found := h.cache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	hc, err := h.registry.GetHealthCheck(checkID)
	if err != nil {
		writeError(w, "Health check not found", http.StatusNotFound)
		return
	}

	namespaces := models.ClassifyReplication(hc)
	resp := map[string]interface{}{
		"health_check_id": checkID,
		"namespaces":      namespaces,
	}

	h.cache.PutTTL(cacheKey, resp, h.listTTL())
	writeJSON(w, http.StatusOK, resp)
}
