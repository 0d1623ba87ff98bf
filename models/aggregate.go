// ABOUTME: Hierarchical metrics rollup: cluster results into region summaries, regions into fleet.
// ABOUTME: Pure functions over a snapshot; repeated calls on unchanged input yield identical results.

package models

// StatusCounts is a per-status breakdown of cluster results. Kept as a
// struct rather than a map so every status is accounted for explicitly.
type StatusCounts struct {
	Waiting    int `json:"waiting"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Partial    int `json:"partial"`
	Failed     int `json:"failed"`
}

// Add increments the counter for the given status.
func (s *StatusCounts) Add(status Status) {
	switch status {
	case StatusWaiting:
		s.Waiting++
	case StatusProcessing:
		s.Processing++
	case StatusCompleted:
		s.Completed++
	case StatusPartial:
		s.Partial++
	case StatusFailed:
		s.Failed++
	}
}

// Merge adds another breakdown into this one.
func (s *StatusCounts) Merge(other StatusCounts) {
	s.Waiting += other.Waiting
	s.Processing += other.Processing
	s.Completed += other.Completed
	s.Partial += other.Partial
	s.Failed += other.Failed
}

// Total returns the number of results across all statuses.
func (s StatusCounts) Total() int {
	return s.Waiting + s.Processing + s.Completed + s.Partial + s.Failed
}

// RegionSummary is the rollup of one region's cluster results. Numeric sums
// only consider viewable results; non-viewable ones contribute zero but are
// still counted in TotalClusters and the status breakdown.
type RegionSummary struct {
	Region            string       `json:"region"`
	TotalClusters     int          `json:"total_clusters"`
	TotalNamespaces   int          `json:"total_namespaces"`
	TotalUsedMemoryGB float64      `json:"total_used_memory_gb"`
	TotalUniqueDataGB float64      `json:"total_unique_data_gb"`
	HealthIssues      int          `json:"health_issues"`
	Statuses          StatusCounts `json:"statuses"`
}

// FleetSummary is the element-wise sum of region summaries.
type FleetSummary struct {
	TotalRegions      int          `json:"total_regions"`
	TotalClusters     int          `json:"total_clusters"`
	TotalNamespaces   int          `json:"total_namespaces"`
	TotalUsedMemoryGB float64      `json:"total_used_memory_gb"`
	TotalUniqueDataGB float64      `json:"total_unique_data_gb"`
	HealthIssues      int          `json:"health_issues"`
	Statuses          StatusCounts `json:"statuses"`
}

// SummarizeRegion computes the rollup for one region.
func SummarizeRegion(r *Region) RegionSummary {
	summary := RegionSummary{
		Region:        r.Name,
		TotalClusters: len(r.Clusters),
	}

	for _, c := range r.Clusters {
		summary.Statuses.Add(c.Status)

		if !c.Viewable() || c.Data == nil {
			continue
		}

		summary.TotalNamespaces += len(c.Data.Namespaces)
		summary.TotalUsedMemoryGB += NumericOrZero(c.Data.ClusterInfo.Memory.Used)
		summary.HealthIssues += len(c.Data.Health.Issues)

		for _, ns := range c.Data.Namespaces {
			summary.TotalUniqueDataGB += ns.ClientWrites.UniqueData
		}
	}

	return summary
}

// SummarizeFleet computes per-region summaries and their fleet-wide sum.
func SummarizeFleet(h *HealthCheck) (FleetSummary, []RegionSummary) {
	fleet := FleetSummary{TotalRegions: len(h.Regions)}
	regions := make([]RegionSummary, 0, len(h.Regions))

	for _, r := range h.Regions {
		rs := SummarizeRegion(r)
		regions = append(regions, rs)

		fleet.TotalClusters += rs.TotalClusters
		fleet.TotalNamespaces += rs.TotalNamespaces
		fleet.TotalUsedMemoryGB += rs.TotalUsedMemoryGB
		fleet.TotalUniqueDataGB += rs.TotalUniqueDataGB
		fleet.HealthIssues += rs.HealthIssues
		fleet.Statuses.Merge(rs.Statuses)
	}

	return fleet, regions
}
