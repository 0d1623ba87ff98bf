// ABOUTME: Cluster result endpoints: upload, query view, detail, retry, delete
// ABOUTME: Uploads spool multipart files to disk and kick off processing jobs

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/fleetops/aerospike-health-analyzer/models"
	"github.com/fleetops/aerospike-health-analyzer/services"
)

// UploadFiles accepts one or more collectinfo bundles as multipart form
// files, records them in the region, and starts a processing job per
// accepted file. Per-file rejections (bad name, duplicate) do not fail the
// rest of the batch.
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")
	regionName := r.PathValue("region")

	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, "Upload too large or malformed multipart body", http.StatusRequestEntityTooLarge)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeError(w, "No files provided; use multipart field \"files\"", http.StatusBadRequest)
		return
	}

	var files []services.UploadFile
	spooled := make(map[string]string, len(fileHeaders))
	for _, fh := range fileHeaders {
		path, err := h.spoolUpload(fh)
		if err != nil {
			slog.Error("Failed to spool upload", "filename", fh.Filename, "error", err)
			writeErrorDetails(w, "Failed to store uploaded file", err.Error(), http.StatusInternalServerError)
			return
		}
		spooled[fh.Filename] = path
		files = append(files, services.UploadFile{Filename: fh.Filename, Path: path})
	}

	outcomes, clusterCount, err := h.registry.Upload(checkID, regionName, files)
	if err != nil {
		// Nothing was recorded, so nothing will ever delete these files.
		for _, path := range spooled {
			os.Remove(path)
		}
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, "Health check not found", http.StatusNotFound)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, outcome := range outcomes {
		if !outcome.Accepted {
			os.Remove(spooled[outcome.Filename])
			continue
		}
		if err := h.processor.Start(outcome.ResultKey, spooled[outcome.Filename]); err != nil {
			slog.Error("Failed to start processing job", "result_key", outcome.ResultKey, "error", err)
		}
	}

	h.invalidateViews(checkID)
	writeJSON(w, http.StatusAccepted, models.UploadResponse{
		HealthCheckID: checkID,
		Region:        regionName,
		Outcomes:      outcomes,
		ClusterCount:  clusterCount,
	})
}

// spoolUpload copies one multipart file to the upload directory under a
// random name, keeping the original filename only as registry metadata.
func (h *Handler) spoolUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.cfg.UploadDir, "upload-"+uuid.NewString())
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// QueryClusters returns one page of a region's cluster results filtered,
// sorted, and paginated by query parameters.
func (h *Handler) QueryClusters(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")
	regionName := r.PathValue("region")

	region, err := h.registry.GetRegion(checkID, regionName)
	if err != nil {
		writeError(w, "Region not found", http.StatusNotFound)
		return
	}

	params, err := parseQueryParams(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, services.QueryClusters(region.Clusters, params))
}

func parseQueryParams(r *http.Request) (services.QueryParams, error) {
	q := r.URL.Query()
	params := services.QueryParams{
		Search: q.Get("search"),
		SortBy: q.Get("sort_by"),
	}

	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return params, errors.New("unknown status filter: " + raw)
		}
		params.Status = &status
	}
	if q.Get("order") == "asc" {
		params.SortAscending = true
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, errors.New("page must be a number")
		}
		params.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return params, errors.New("page_size must be a number")
		}
		params.PageSize = size
	}
	return params, nil
}

// GetClusterDetail returns one cluster result with its parsed data.
func (h *Handler) GetClusterDetail(w http.ResponseWriter, r *http.Request) {
	result, err := h.registry.GetCluster(r.PathValue("key"))
	if err != nil {
		writeError(w, "Cluster result not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RetryCluster re-runs processing for a failed or partial result. The
// last-known-good data stays visible until the retry finishes.
func (h *Handler) RetryCluster(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")
	resultKey := r.PathValue("key")

	result, err := h.registry.GetCluster(resultKey)
	if err != nil {
		writeError(w, "Cluster result not found", http.StatusNotFound)
		return
	}
	if !result.Status.Retryable() {
		writeError(w, "Result is not retryable in status "+result.Status.String(), http.StatusConflict)
		return
	}

	if err := h.processor.Start(resultKey, result.FilePath); err != nil {
		if errors.Is(err, services.ErrJobInFlight) {
			writeError(w, "A processing job is already running for this result", http.StatusConflict)
			return
		}
		writeErrorDetails(w, "Failed to start retry", err.Error(), http.StatusInternalServerError)
		return
	}

	h.invalidateViews(checkID)
	writeJSON(w, http.StatusAccepted, models.RetryResponse{
		ResultKey: resultKey,
		Status:    models.StatusProcessing,
	})
}

// DeleteCluster removes one cluster result, cancelling any in-flight job.
func (h *Handler) DeleteCluster(w http.ResponseWriter, r *http.Request) {
	checkID := r.PathValue("id")
	resultKey := r.PathValue("key")

	h.processor.Cancel(resultKey)
	if err := h.registry.DeleteCluster(resultKey); err != nil {
		writeError(w, "Cluster result not found", http.StatusNotFound)
		return
	}

	h.invalidateViews(checkID)
	w.WriteHeader(http.StatusNoContent)
}
