// ABOUTME: Read-only search/filter/sort/pagination projection over a region's cluster results.
// ABOUTME: Derivable at any time from a registry snapshot; holds no cursor state.

package services

import (
	"sort"
	"strings"

	"github.com/fleetops/aerospike-health-analyzer/models"
)

// Sort keys accepted by the query view.
const (
	SortByMemory     = "memory"
	SortByName       = "name"
	SortByNamespaces = "namespaces"
	SortByLicense    = "license"
)

// DefaultPageSize is used when the caller does not supply a page size.
const DefaultPageSize = 50

// QueryParams are the caller-supplied view parameters.
type QueryParams struct {
	Search        string         `json:"search"`
	Status        *models.Status `json:"status,omitempty"`
	SortBy        string         `json:"sort_by"`
	SortAscending bool           `json:"sort_ascending"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

// QueryPage is one page of filtered, sorted cluster results.
type QueryPage struct {
	Clusters   []*models.ClusterResult `json:"clusters"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalCount int                     `json:"total_count"`
	TotalPages int                     `json:"total_pages"`
}

// QueryClusters applies search, status filter, sort, and pagination to a
// snapshot of cluster results. Out-of-range page numbers clamp to the valid
// range. The input slice is never mutated.
func QueryClusters(clusters []*models.ClusterResult, params QueryParams) QueryPage {
	filtered := filterClusters(clusters, params)
	sortClusters(filtered, params)
	return paginate(filtered, params)
}

func filterClusters(clusters []*models.ClusterResult, params QueryParams) []*models.ClusterResult {
	search := strings.ToLower(strings.TrimSpace(params.Search))

	out := make([]*models.ClusterResult, 0, len(clusters))
	for _, c := range clusters {
		if params.Status != nil && c.Status != *params.Status {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesSearch checks the cluster name, filename, and display name for a
// case-insensitive substring match.
func matchesSearch(c *models.ClusterResult, search string) bool {
	for _, field := range []string{c.ClusterName, c.Filename, c.DisplayName()} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func sortClusters(clusters []*models.ClusterResult, params QueryParams) {
	var less func(a, b *models.ClusterResult) bool

	switch params.SortBy {
	case SortByName:
		less = func(a, b *models.ClusterResult) bool {
			return a.DisplayName() < b.DisplayName()
		}
	case SortByNamespaces:
		less = func(a, b *models.ClusterResult) bool {
			return namespaceCount(a) < namespaceCount(b)
		}
	case SortByLicense:
		less = func(a, b *models.ClusterResult) bool {
			return licenseUsage(a) < licenseUsage(b)
		}
	default:
		// Default ordering: parsed memoryUsed; unparsable sorts as zero.
		// With the default descending direction this puts the largest
		// clusters first.
		less = func(a, b *models.ClusterResult) bool {
			return memoryUsed(a) < memoryUsed(b)
		}
	}

	if params.SortAscending {
		sort.SliceStable(clusters, func(i, j int) bool { return less(clusters[i], clusters[j]) })
	} else {
		sort.SliceStable(clusters, func(i, j int) bool { return less(clusters[j], clusters[i]) })
	}
}

func memoryUsed(c *models.ClusterResult) float64 {
	if !c.Viewable() || c.Data == nil {
		return 0
	}
	return models.NumericOrZero(c.Data.ClusterInfo.Memory.Used)
}

func namespaceCount(c *models.ClusterResult) int {
	if !c.Viewable() || c.Data == nil {
		return 0
	}
	return len(c.Data.Namespaces)
}

func licenseUsage(c *models.ClusterResult) float64 {
	if !c.Viewable() || c.Data == nil {
		return 0
	}
	return models.NumericOrZero(c.Data.ClusterInfo.License.Usage)
}

func paginate(clusters []*models.ClusterResult, params QueryParams) QueryPage {
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(clusters)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return QueryPage{
		Clusters:   clusters[start:end],
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
