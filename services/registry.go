// ABOUTME: In-memory registry of health checks, regions, and cluster results.
// ABOUTME: Mediates creation, uploads, lifecycle transitions, retry, and cascade deletion.

package services

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fleetops/aerospike-health-analyzer/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown health check IDs or result keys.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRegion is returned when a region name already exists.
	ErrDuplicateRegion = errors.New("region already exists")
	// ErrNotRetryable is returned when a lifecycle transition is not legal
	// from the result's current status.
	ErrNotRetryable = errors.New("result is not retryable from its current status")
)

// UploadFile is one file in an upload request: the client-supplied name and
// where the bytes were spooled on disk.
type UploadFile struct {
	Filename string
	Path     string
}

// clusterLoc indexes a result key back to its owning health check and region.
type clusterLoc struct {
	checkID string
	region  string
}

// Registry is the shared, mutable collection of health checks. All access
// goes through the RWMutex; reads hand out structural clones so aggregation
// and rendering never hold the lock.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]*models.HealthCheck
	index  map[string]clusterLoc // resultKey -> location
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]*models.HealthCheck),
		index:  make(map[string]clusterLoc),
	}
}

// CreateHealthCheck registers a new health check for a customer. When no
// regions are given a placeholder "default" region is created so the
// aggregate always has at least one region.
func (r *Registry) CreateHealthCheck(customerName string, regions []models.RegionSpec) (*models.HealthCheck, error) {
	if err := ValidateCustomerName(customerName); err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		regions = []models.RegionSpec{{Name: "default"}}
	}

	seen := make(map[string]bool, len(regions))
	hc := &models.HealthCheck{
		ID:           uuid.NewString(),
		CustomerName: customerName,
		CreatedAt:    time.Now(),
	}
	for _, spec := range regions {
		if err := ValidateRegionName(spec.Name); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRegion, sanitizeForLog(spec.Name))
		}
		seen[spec.Name] = true
		hc.Regions = append(hc.Regions, &models.Region{
			Name:     spec.Name,
			Expected: spec.ExpectedFiles,
			Clusters: []*models.ClusterResult{},
		})
	}

	r.mu.Lock()
	r.checks[hc.ID] = hc
	r.mu.Unlock()

	slog.Info("Health check created", "id", hc.ID, "customer", customerName, "regions", len(hc.Regions))
	return hc.Clone(), nil
}

// AddRegion adds a named region to an existing health check. Region names
// are the join key and are never silently merged: duplicates are rejected.
func (r *Registry) AddRegion(checkID, name string) error {
	if err := ValidateRegionName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hc, ok := r.checks[checkID]
	if !ok {
		return ErrNotFound
	}
	for _, region := range hc.Regions {
		if region.Name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateRegion, sanitizeForLog(name))
		}
	}
	hc.Regions = append(hc.Regions, &models.Region{
		Name:     name,
		Clusters: []*models.ClusterResult{},
	})
	return nil
}

// Upload registers uploaded files under a region, creating each accepted
// file's ClusterResult in the waiting state. A file whose name duplicates an
// existing result in the same region is rejected with a per-file warning;
// the rest of the batch still proceeds. The region is created implicitly on
// first upload naming it.
func (r *Registry) Upload(checkID, regionName string, files []UploadFile) ([]models.UploadOutcome, int, error) {
	if err := ValidateRegionName(regionName); err != nil {
		return nil, 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hc, ok := r.checks[checkID]
	if !ok {
		return nil, 0, ErrNotFound
	}

	var region *models.Region
	for _, reg := range hc.Regions {
		if reg.Name == regionName {
			region = reg
			break
		}
	}
	if region == nil {
		region = &models.Region{Name: regionName, Clusters: []*models.ClusterResult{}}
		hc.Regions = append(hc.Regions, region)
		slog.Info("Region created implicitly on upload", "health_check", checkID, "region", regionName)
	}

	existing := make(map[string]bool, len(region.Clusters))
	for _, c := range region.Clusters {
		existing[c.Filename] = true
	}

	outcomes := make([]models.UploadOutcome, 0, len(files))
	for _, f := range files {
		if err := ValidateFilename(f.Filename); err != nil {
			outcomes = append(outcomes, models.UploadOutcome{
				Filename: f.Filename,
				Accepted: false,
				Reason:   err.Error(),
			})
			continue
		}
		if existing[f.Filename] {
			outcomes = append(outcomes, models.UploadOutcome{
				Filename: f.Filename,
				Accepted: false,
				Reason:   "duplicate filename in region",
			})
			slog.Warn("Duplicate upload rejected", "health_check", checkID, "region", regionName, "filename", sanitizeForLog(f.Filename))
			continue
		}
		existing[f.Filename] = true

		result := &models.ClusterResult{
			ResultKey: uuid.NewString(),
			Filename:  f.Filename,
			Status:    models.StatusWaiting,
			FilePath:  f.Path,
		}
		region.Clusters = append(region.Clusters, result)
		r.index[result.ResultKey] = clusterLoc{checkID: checkID, region: regionName}

		outcomes = append(outcomes, models.UploadOutcome{
			Filename:  f.Filename,
			Accepted:  true,
			ResultKey: result.ResultKey,
			Status:    result.Status,
		})
	}

	return outcomes, len(region.Clusters), nil
}

// MarkProcessing transitions a result into processing. Legal from waiting
// (file became available) and from failed/partial (retry, clearing the
// error while keeping last-known-good data). Completed results are
// rejected: they must be deleted and re-uploaded.
func (r *Registry) MarkProcessing(resultKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, _, err := r.locate(resultKey)
	if err != nil {
		return err
	}
	if !result.Status.CanTransition(models.StatusProcessing) {
		return fmt.Errorf("%w: %s", ErrNotRetryable, result.Status)
	}
	result.Status = models.StatusProcessing
	result.Error = ""
	return nil
}

// CompleteProcessing records a terminal status from a processing job. A
// completion for a result that was deleted mid-flight is silently
// discarded; the deleted key must not reappear.
func (r *Registry) CompleteProcessing(resultKey string, status models.Status, data *models.ClusterData, errMsg string) {
	if !status.Terminal() {
		slog.Error("Rejecting non-terminal completion", "result_key", resultKey, "status", status)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result, _, err := r.locate(resultKey)
	if err != nil {
		slog.Debug("Completion discarded for deleted result", "result_key", resultKey)
		return
	}
	if !result.Status.CanTransition(status) {
		slog.Warn("Completion discarded for illegal transition",
			"result_key", resultKey, "from", result.Status, "to", status)
		return
	}

	result.Status = status
	result.Error = errMsg
	result.ProcessedAt = time.Now()
	if data != nil {
		result.Data = data
		result.ClusterName = data.ClusterInfo.Name
	}
}

// GetHealthCheck returns a snapshot clone of one health check.
func (r *Registry) GetHealthCheck(checkID string) (*models.HealthCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hc, ok := r.checks[checkID]
	if !ok {
		return nil, ErrNotFound
	}
	return hc.Clone(), nil
}

// ListHealthChecks returns snapshot clones of every health check, newest
// first (ties broken by ID for stable output).
func (r *Registry) ListHealthChecks() []*models.HealthCheck {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.HealthCheck, 0, len(r.checks))
	for _, hc := range r.checks {
		out = append(out, hc.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetRegion returns a snapshot clone of one region.
func (r *Registry) GetRegion(checkID, regionName string) (*models.Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hc, ok := r.checks[checkID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, region := range hc.Regions {
		if region.Name == regionName {
			return region.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// GetCluster returns a snapshot clone of one cluster result.
func (r *Registry) GetCluster(resultKey string) (*models.ClusterResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, _, err := r.locate(resultKey)
	if err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// DeleteCluster removes a cluster result from its region.
func (r *Registry) DeleteCluster(resultKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, region, err := r.locate(resultKey)
	if err != nil {
		return err
	}

	for i, c := range region.Clusters {
		if c.ResultKey == result.ResultKey {
			region.Clusters = append(region.Clusters[:i], region.Clusters[i+1:]...)
			break
		}
	}
	delete(r.index, resultKey)
	removeSpooledFile(result.FilePath)
	slog.Info("Cluster result deleted", "result_key", resultKey, "region", region.Name)
	return nil
}

// DeleteHealthCheck removes a health check and cascades to all owned
// regions and cluster results.
func (r *Registry) DeleteHealthCheck(checkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hc, ok := r.checks[checkID]
	if !ok {
		return ErrNotFound
	}
	for _, region := range hc.Regions {
		for _, c := range region.Clusters {
			delete(r.index, c.ResultKey)
			removeSpooledFile(c.FilePath)
		}
	}
	delete(r.checks, checkID)
	slog.Info("Health check deleted", "id", checkID, "customer", hc.CustomerName)
	return nil
}

// removeSpooledFile deletes an uploaded bundle from disk. Results rejected
// at upload time have no file path; a file already gone is not an error.
func removeSpooledFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not remove uploaded file", "path", path, "error", err)
	}
}

// locate resolves a result key to its live result and owning region.
// Callers must hold r.mu.
func (r *Registry) locate(resultKey string) (*models.ClusterResult, *models.Region, error) {
	loc, ok := r.index[resultKey]
	if !ok {
		return nil, nil, ErrNotFound
	}
	hc, ok := r.checks[loc.checkID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	for _, region := range hc.Regions {
		if region.Name != loc.region {
			continue
		}
		for _, c := range region.Clusters {
			if c.ResultKey == resultKey {
				return c, region, nil
			}
		}
	}
	return nil, nil, ErrNotFound
}
