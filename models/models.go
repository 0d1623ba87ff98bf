// ABOUTME: Core domain entities: health checks, regions, and cluster results.
// ABOUTME: JSON-serializable structures with defaults fixed at the parse boundary.

package models

import "time"

// HealthCheck is the aggregate root: one customer's fleet review, holding an
// ordered set of regions.
type HealthCheck struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
	Regions      []*Region `json:"regions"`
}

// Region is a named grouping of cluster results, typically a geographic
// deployment zone. Region names are unique within a health check.
type Region struct {
	Name     string           `json:"name"`
	Expected int              `json:"expected_files,omitempty"`
	Clusters []*ClusterResult `json:"clusters"`
}

// ClusterResult is one uploaded collectinfo bundle and its derived data.
// Data is set once when a processing job finishes and treated as immutable
// afterwards; snapshots may share the pointer.
type ClusterResult struct {
	ResultKey   string       `json:"result_key"`
	Filename    string       `json:"filename"`
	Status      Status       `json:"status"`
	Error       string       `json:"error,omitempty"`
	ClusterName string       `json:"cluster_name,omitempty"`
	Data        *ClusterData `json:"data,omitempty"`
	ProcessedAt time.Time    `json:"processed_at,omitempty"`

	// FilePath is where the uploaded bundle lives on disk, kept for retries.
	FilePath string `json:"-"`
}

// Viewable reports whether callers may read the result's Data fields.
func (c *ClusterResult) Viewable() bool {
	return c.Status.Viewable()
}

// DisplayName returns the best available name for presentation.
func (c *ClusterResult) DisplayName() string {
	if c.ClusterName != "" {
		return c.ClusterName
	}
	if c.Data != nil && c.Data.ClusterInfo.Name != "" {
		return c.Data.ClusterInfo.Name
	}
	return c.Filename
}

// ClusterData is the fully-typed structured payload produced by the parsing
// boundary. Every field has a defined default (zero, empty string, empty
// list) established once by ApplyDefaults; readers never re-derive defaults.
type ClusterData struct {
	ClusterInfo ClusterInfo   `json:"clusterInfo"`
	Nodes       []NodeInfo    `json:"nodes"`
	Namespaces  []Namespace   `json:"namespaces"`
	Health      HealthSummary `json:"health"`
	LastUpdated string        `json:"lastUpdated,omitempty"`
}

// ClusterInfo carries cluster-level metrics. Raw magnitude fields keep the
// unit text reported by the source ("12.3 GB") and are read via ParseNumeric.
type ClusterInfo struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	Size           int         `json:"size"`
	NamespaceCount int         `json:"namespaces"`
	Memory         MemoryInfo  `json:"memory"`
	License        LicenseInfo `json:"license"`
}

type MemoryInfo struct {
	Total       string `json:"total"`
	Used        string `json:"used"`
	UsedPercent string `json:"usedPercent"`
}

type LicenseInfo struct {
	Usage        string `json:"usage"`
	UsagePercent string `json:"usagePercent"`
	Total        string `json:"total"`
}

type NodeInfo struct {
	Node        string `json:"node"`
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Connections string `json:"connections"`
}

// Namespace is one logical keyspace within a cluster, with its capacity
// counters and write statistics.
type Namespace struct {
	Name              string       `json:"name"`
	Objects           string       `json:"objects"`
	MemoryUsed        string       `json:"memoryUsed"`
	MemoryUsedPercent string       `json:"memoryUsedPercent"`
	ReplicationFactor int          `json:"replicationFactor"`
	License           LicenseInfo  `json:"license"`
	ClientWrites      ClientWrites `json:"clientWrites"`
}

// HasXDR reports whether this namespace instance participates in
// cross-datacenter replication.
func (n *Namespace) HasXDR() bool {
	return n.ClientWrites.XdrClientWriteSuccess > 0
}

// ClientWrites holds per-node write counters as extracted from
// "show stat like client_write" output, plus metrics derived from them.
type ClientWrites struct {
	NodeNames                    []string  `json:"nodeNames"`
	ClientWriteSuccessPerNode    []float64 `json:"clientWriteSuccessPerNode"`
	XdrClientWriteSuccessPerNode []float64 `json:"xdrClientWriteSuccessPerNode"`

	// Derived: sums across nodes and the unique-data split.
	ClientWriteSuccess    float64 `json:"clientWriteSuccess"`
	XdrClientWriteSuccess float64 `json:"xdrClientWriteSuccess"`
	UniqueWritesPercent   float64 `json:"uniqueWritesPercent"`
	UniqueData            float64 `json:"uniqueData"`
}

type HealthSummary struct {
	Overall string   `json:"overall"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Issues  []string `json:"issues"`
}

// ApplyDefaults normalizes a freshly-parsed payload: nil slices become
// empty so readers can range without nil checks.
func (d *ClusterData) ApplyDefaults() {
	if d.Nodes == nil {
		d.Nodes = []NodeInfo{}
	}
	if d.Namespaces == nil {
		d.Namespaces = []Namespace{}
	}
	if d.Health.Issues == nil {
		d.Health.Issues = []string{}
	}
	for i := range d.Namespaces {
		cw := &d.Namespaces[i].ClientWrites
		if cw.NodeNames == nil {
			cw.NodeNames = []string{}
		}
		if cw.ClientWriteSuccessPerNode == nil {
			cw.ClientWriteSuccessPerNode = []float64{}
		}
		if cw.XdrClientWriteSuccessPerNode == nil {
			cw.XdrClientWriteSuccessPerNode = []float64{}
		}
	}
}

// ComputeDerivedMetrics aggregates per-node write counters into totals and
// derives the unique-writes split for each namespace:
//
//	uniqueWrites% = (clientWriteSuccess - xdrClientWriteSuccess) * 100 / clientWriteSuccess
//	uniqueData    = licenseUsage * uniqueWrites% / 100
func (d *ClusterData) ComputeDerivedMetrics() {
	for i := range d.Namespaces {
		ns := &d.Namespaces[i]
		cw := &ns.ClientWrites

		cw.ClientWriteSuccess = sum(cw.ClientWriteSuccessPerNode)
		cw.XdrClientWriteSuccess = sum(cw.XdrClientWriteSuccessPerNode)

		if cw.ClientWriteSuccess > 0 {
			pct := (cw.ClientWriteSuccess - cw.XdrClientWriteSuccess) * 100 / cw.ClientWriteSuccess
			cw.UniqueWritesPercent = clamp(pct, 0, 100)
		} else {
			cw.UniqueWritesPercent = 0
		}

		license := NumericOrZero(ns.License.Usage)
		cw.UniqueData = license * cw.UniqueWritesPercent / 100
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clone returns a structural copy of the health check. Cluster Data
// pointers are shared: payloads are immutable after processing completes,
// so sharing is safe and keeps snapshot reads cheap.
func (h *HealthCheck) Clone() *HealthCheck {
	out := &HealthCheck{
		ID:           h.ID,
		CustomerName: h.CustomerName,
		CreatedAt:    h.CreatedAt,
		Regions:      make([]*Region, 0, len(h.Regions)),
	}
	for _, r := range h.Regions {
		out.Regions = append(out.Regions, r.Clone())
	}
	return out
}

// Clone returns a structural copy of the region.
func (r *Region) Clone() *Region {
	out := &Region{
		Name:     r.Name,
		Expected: r.Expected,
		Clusters: make([]*ClusterResult, 0, len(r.Clusters)),
	}
	for _, c := range r.Clusters {
		out.Clusters = append(out.Clusters, c.Clone())
	}
	return out
}

// Clone returns a copy of the cluster result sharing the immutable Data.
func (c *ClusterResult) Clone() *ClusterResult {
	copied := *c
	return &copied
}
