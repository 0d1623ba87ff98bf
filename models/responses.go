// ABOUTME: API request/response envelopes for the health analyzer endpoints.
// ABOUTME: Shapes carry enough context for callers to reconcile state without a second query.

package models

import "time"

// ErrorResponse is the JSON error envelope used across the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// RegionSpec describes a region requested at health check creation time.
type RegionSpec struct {
	Name          string `json:"name"`
	ExpectedFiles int    `json:"expected_files,omitempty"`
}

// CreateHealthCheckRequest is the body for POST /healthchecks.
type CreateHealthCheckRequest struct {
	CustomerName string       `json:"customer_name"`
	Regions      []RegionSpec `json:"regions,omitempty"`
}

// AddRegionRequest is the body for POST /healthchecks/{id}/regions.
type AddRegionRequest struct {
	Name string `json:"name"`
}

// UploadOutcome reports the per-file accept/reject decision of an upload.
// Rejections are non-fatal: other files in the same request still proceed.
type UploadOutcome struct {
	Filename  string `json:"filename"`
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
	ResultKey string `json:"result_key,omitempty"`
	// Status has no omitempty: the zero value is waiting, which accepted
	// uploads must report so callers can reconcile state without a re-query.
	Status Status `json:"status"`
}

// UploadResponse is the result of an upload request.
type UploadResponse struct {
	HealthCheckID string          `json:"health_check_id"`
	Region        string          `json:"region"`
	Outcomes      []UploadOutcome `json:"outcomes"`
	ClusterCount  int             `json:"cluster_count"`
}

// HealthCheckSummary is the list-view projection of one health check.
type HealthCheckSummary struct {
	ID           string       `json:"id"`
	CustomerName string       `json:"customer_name"`
	CreatedAt    time.Time    `json:"created_at"`
	RegionCount  int          `json:"region_count"`
	ClusterCount int          `json:"cluster_count"`
	Statuses     StatusCounts `json:"statuses"`
}

// RegionDetails pairs a region's cluster results with its rollup.
type RegionDetails struct {
	Name     string           `json:"name"`
	Clusters []*ClusterResult `json:"clusters"`
	Summary  RegionSummary    `json:"summary"`
}

// HealthCheckDetails is the full detail view: every region, every cluster
// result, and the fleet-wide rollup.
type HealthCheckDetails struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	CreatedAt    time.Time       `json:"created_at"`
	Regions      []RegionDetails `json:"regions"`
	Fleet        FleetSummary    `json:"fleet"`
}

// RetryResponse reports the new status after a retry request.
type RetryResponse struct {
	ResultKey string `json:"result_key"`
	Status    Status `json:"status"`
}
