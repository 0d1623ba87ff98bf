package models

import (
	"math"
	"testing"
)

func viewableCluster(key string, status Status, namespaces []Namespace, memoryUsed string, issues []string) *ClusterResult {
	return &ClusterResult{
		ResultKey: key,
		Filename:  key + ".tgz",
		Status:    status,
		Data: &ClusterData{
			ClusterInfo: ClusterInfo{Memory: MemoryInfo{Used: memoryUsed}},
			Namespaces:  namespaces,
			Health:      HealthSummary{Issues: issues},
		},
	}
}

func TestSummarizeRegion(t *testing.T) {
	region := &Region{
		Name: "us-east",
		Clusters: []*ClusterResult{
			viewableCluster("a", StatusCompleted, []Namespace{
				{Name: "ns1", ClientWrites: ClientWrites{UniqueData: 3.5}},
				{Name: "ns2", ClientWrites: ClientWrites{UniqueData: 1.5}},
			}, "10.5 GB", []string{"high memory"}),
			viewableCluster("b", StatusPartial, []Namespace{
				{Name: "ns1", ClientWrites: ClientWrites{UniqueData: 2.0}},
			}, "N/A", nil),
			// Non-viewable results count toward totals but contribute zero
			// to every numeric rollup.
			{ResultKey: "c", Filename: "c.tgz", Status: StatusFailed, Error: "asadm failed"},
			{ResultKey: "d", Filename: "d.tgz", Status: StatusProcessing},
		},
	}

	got := SummarizeRegion(region)

	if got.TotalClusters != 4 {
		t.Errorf("Expected 4 clusters, got %d", got.TotalClusters)
	}
	if got.TotalNamespaces != 3 {
		t.Errorf("Expected 3 namespaces over viewable results, got %d", got.TotalNamespaces)
	}
	if got.TotalUsedMemoryGB != 10.5 {
		t.Errorf("Expected 10.5 GB used memory (N/A contributes 0), got %v", got.TotalUsedMemoryGB)
	}
	if got.TotalUniqueDataGB != 7.0 {
		t.Errorf("Expected 7.0 GB unique data, got %v", got.TotalUniqueDataGB)
	}
	if got.HealthIssues != 1 {
		t.Errorf("Expected 1 health issue, got %d", got.HealthIssues)
	}
	if got.Statuses.Completed != 1 || got.Statuses.Partial != 1 || got.Statuses.Failed != 1 || got.Statuses.Processing != 1 {
		t.Errorf("Unexpected status breakdown: %+v", got.Statuses)
	}
}

func TestSummarizeFleet_SumsRegions(t *testing.T) {
	h := &HealthCheck{
		ID: "hc1",
		Regions: []*Region{
			{Name: "us-east", Clusters: []*ClusterResult{
				viewableCluster("a", StatusCompleted, []Namespace{{Name: "ns1"}}, "10 GB", nil),
			}},
			{Name: "eu-west", Clusters: []*ClusterResult{
				viewableCluster("b", StatusCompleted, []Namespace{{Name: "ns1"}, {Name: "ns2"}}, "4 GB", []string{"x", "y"}),
			}},
		},
	}

	fleet, regions := SummarizeFleet(h)

	if fleet.TotalRegions != 2 {
		t.Errorf("Expected 2 regions, got %d", fleet.TotalRegions)
	}

	var memSum float64
	var nsSum, clusterSum int
	for _, rs := range regions {
		memSum += rs.TotalUsedMemoryGB
		nsSum += rs.TotalNamespaces
		clusterSum += rs.TotalClusters
	}
	if fleet.TotalUsedMemoryGB != memSum {
		t.Errorf("Fleet memory %v != sum of region memory %v", fleet.TotalUsedMemoryGB, memSum)
	}
	if fleet.TotalNamespaces != nsSum {
		t.Errorf("Fleet namespaces %d != sum of region namespaces %d", fleet.TotalNamespaces, nsSum)
	}
	if fleet.TotalClusters != clusterSum {
		t.Errorf("Fleet clusters %d != sum of region clusters %d", fleet.TotalClusters, clusterSum)
	}
	if fleet.HealthIssues != 2 {
		t.Errorf("Expected 2 fleet health issues, got %d", fleet.HealthIssues)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	h := &HealthCheck{
		Regions: []*Region{
			{Name: "ap-south", Clusters: []*ClusterResult{
				viewableCluster("a", StatusCompleted, []Namespace{
					{Name: "ns1", ClientWrites: ClientWrites{UniqueData: 1.25}},
				}, "3.3 GB", nil),
			}},
		},
	}

	first, _ := SummarizeFleet(h)
	second, _ := SummarizeFleet(h)

	if first != second {
		t.Errorf("Repeated aggregation drifted: %+v vs %+v", first, second)
	}
}

func TestComputeDerivedMetrics(t *testing.T) {
	data := &ClusterData{
		Namespaces: []Namespace{
			{
				Name:    "ns1",
				License: LicenseInfo{Usage: "100 GB"},
				ClientWrites: ClientWrites{
					ClientWriteSuccessPerNode:    []float64{23095, 32213, 215400, 69448, 249390},
					XdrClientWriteSuccessPerNode: []float64{10000, 10000, 10000, 10000, 10000},
				},
			},
		},
	}

	data.ComputeDerivedMetrics()

	cw := data.Namespaces[0].ClientWrites
	if cw.ClientWriteSuccess != 589546 {
		t.Errorf("Expected summed client writes 589546, got %v", cw.ClientWriteSuccess)
	}
	if cw.XdrClientWriteSuccess != 50000 {
		t.Errorf("Expected summed XDR writes 50000, got %v", cw.XdrClientWriteSuccess)
	}

	wantPct := (589546.0 - 50000.0) * 100 / 589546.0
	if math.Abs(cw.UniqueWritesPercent-wantPct) > 1e-9 {
		t.Errorf("Expected unique writes %% %v, got %v", wantPct, cw.UniqueWritesPercent)
	}
	wantData := 100 * wantPct / 100
	if math.Abs(cw.UniqueData-wantData) > 1e-9 {
		t.Errorf("Expected unique data %v, got %v", wantData, cw.UniqueData)
	}
}

func TestComputeDerivedMetrics_ZeroWrites(t *testing.T) {
	data := &ClusterData{
		Namespaces: []Namespace{
			{Name: "ns1", License: LicenseInfo{Usage: "50 GB"}},
		},
	}

	data.ComputeDerivedMetrics()

	cw := data.Namespaces[0].ClientWrites
	if cw.UniqueWritesPercent != 0 || cw.UniqueData != 0 {
		t.Errorf("Expected zero derived metrics for zero writes, got %%=%v data=%v",
			cw.UniqueWritesPercent, cw.UniqueData)
	}
}

func TestApplyDefaults(t *testing.T) {
	data := &ClusterData{Namespaces: []Namespace{{Name: "ns1"}}}
	data.ApplyDefaults()

	if data.Nodes == nil || data.Namespaces == nil || data.Health.Issues == nil {
		t.Error("Expected nil slices to be defaulted to empty")
	}
	if data.Namespaces[0].ClientWrites.ClientWriteSuccessPerNode == nil {
		t.Error("Expected per-node counter slices to be defaulted")
	}
}
