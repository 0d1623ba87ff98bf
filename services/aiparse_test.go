package services

import (
	"math"
	"strings"
	"testing"
)

const sampleModelOutput = `{
  "clusterInfo": {
    "name": "prod-east",
    "version": "7.1.0.3",
    "size": "5",
    "namespaces": "2",
    "memory": {"total": "128 GB", "used": "43.5 GB", "usedPercent": "34%"},
    "license": {"usage": "2.1 TB", "usagePercent": "52%", "total": "4 TB"}
  },
  "nodes": [
    {"node": "10.0.0.1:3000", "status": "on", "uptime": "34d", "connections": "412"}
  ],
  "namespaces": [
    {
      "name": "userdata",
      "objects": "1.2 B",
      "memoryUsed": "30.0",
      "memoryUsedPercent": "40%",
      "replicationFactor": "2",
      "license": {"usage": "10.0", "usagePercent": "25%", "total": "4 TB"},
      "clientWrites": {
        "nodeNames": ["10.0.0.1:3000", "10.0.0.2:3000"],
        "clientWriteSuccessPerNode": ["23,095", 32213],
        "xdrClientWriteSuccessPerNode": [1000, "2,000"]
      }
    }
  ],
  "health": {"overall": "degraded", "passed": 40, "failed": 3, "skipped": 1, "issues": ["clock skew on node 2"]}
}`

func TestDecodeClusterData_FullPayload(t *testing.T) {
	data, partial, err := DecodeClusterData(sampleModelOutput)
	if err != nil {
		t.Fatalf("DecodeClusterData failed: %v", err)
	}
	if partial {
		t.Error("Expected a complete payload, got partial")
	}
	if data.ClusterInfo.Name != "prod-east" {
		t.Errorf("Expected cluster name prod-east, got %q", data.ClusterInfo.Name)
	}
	if data.ClusterInfo.Size != 5 {
		t.Errorf("Expected size 5, got %d", data.ClusterInfo.Size)
	}
	if len(data.Nodes) != 1 || data.Nodes[0].Node != "10.0.0.1:3000" {
		t.Errorf("Unexpected nodes: %+v", data.Nodes)
	}
	if len(data.Health.Issues) != 1 {
		t.Errorf("Expected one health issue, got %d", len(data.Health.Issues))
	}

	ns := data.Namespaces[0]
	if ns.ReplicationFactor != 2 {
		t.Errorf("Expected replication factor 2, got %d", ns.ReplicationFactor)
	}

	// Counter arrays tolerate both numbers and "23,095"-style strings,
	// and derived sums come from our side, not the model.
	cw := ns.ClientWrites
	if cw.ClientWriteSuccess != 23095+32213 {
		t.Errorf("Expected client write sum 55308, got %v", cw.ClientWriteSuccess)
	}
	if cw.XdrClientWriteSuccess != 3000 {
		t.Errorf("Expected XDR write sum 3000, got %v", cw.XdrClientWriteSuccess)
	}
	wantPct := (55308.0 - 3000.0) * 100 / 55308.0
	if math.Abs(cw.UniqueWritesPercent-wantPct) > 1e-9 {
		t.Errorf("Expected unique writes %.4f%%, got %.4f%%", wantPct, cw.UniqueWritesPercent)
	}
	wantUnique := 10.0 * wantPct / 100
	if math.Abs(cw.UniqueData-wantUnique) > 1e-9 {
		t.Errorf("Expected unique data %.4f, got %.4f", wantUnique, cw.UniqueData)
	}
}

func TestDecodeClusterData_StripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + sampleModelOutput + "\n```"
	data, _, err := DecodeClusterData(fenced)
	if err != nil {
		t.Fatalf("DecodeClusterData failed on fenced output: %v", err)
	}
	if data.ClusterInfo.Name != "prod-east" {
		t.Errorf("Expected prod-east, got %q", data.ClusterInfo.Name)
	}
}

func TestDecodeClusterData_InvalidJSON(t *testing.T) {
	if _, _, err := DecodeClusterData("I could not parse the provided output."); err == nil {
		t.Error("Expected an error for non-JSON output")
	}
	if _, _, err := DecodeClusterData(""); err == nil {
		t.Error("Expected an error for empty output")
	}
}

func TestDecodeClusterData_MissingSections(t *testing.T) {
	if _, _, err := DecodeClusterData(`{"health": {"overall": "ok"}}`); err == nil {
		t.Error("Expected an error when neither cluster info nor namespaces decode")
	}
}

func TestDecodeClusterData_PartialWhenNameMissing(t *testing.T) {
	raw := `{"clusterInfo": {"version": "7.1"}, "namespaces": [{"name": "ns1"}]}`
	data, partial, err := DecodeClusterData(raw)
	if err != nil {
		t.Fatalf("DecodeClusterData failed: %v", err)
	}
	if !partial {
		t.Error("Expected partial when the cluster name is missing")
	}
	// Defaults keep the counter slices rangeable without nil checks.
	if data.Namespaces[0].ClientWrites.ClientWriteSuccessPerNode == nil {
		t.Error("Expected namespace defaults to be applied")
	}
}

func TestDecodeClusterData_PartialWhenNoNamespaces(t *testing.T) {
	raw := `{"clusterInfo": {"name": "lonely"}}`
	_, partial, err := DecodeClusterData(raw)
	if err != nil {
		t.Fatalf("DecodeClusterData failed: %v", err)
	}
	if !partial {
		t.Error("Expected partial when namespaces are absent")
	}
}

func TestFallbackClusterData_ScrapesSummaryRows(t *testing.T) {
	combined := `=== INFO ===
|| Cluster Name | prod-east
|| Server Version | E-7.1.0.3
|| Cluster Size | 5
|| Namespaces Active | 2
Health checks Total: 112 Passed: 100 Failed: 8 Skipped: 4
`
	data := FallbackClusterData(combined)

	if data.ClusterInfo.Name != "prod-east" {
		t.Errorf("Expected scraped name prod-east, got %q", data.ClusterInfo.Name)
	}
	if data.ClusterInfo.Version != "E-7.1.0.3" {
		t.Errorf("Expected scraped version, got %q", data.ClusterInfo.Version)
	}
	if data.ClusterInfo.Size != 5 {
		t.Errorf("Expected size 5, got %d", data.ClusterInfo.Size)
	}
	if data.ClusterInfo.NamespaceCount != 2 {
		t.Errorf("Expected 2 active namespaces, got %d", data.ClusterInfo.NamespaceCount)
	}
	if data.Health.Passed != 100 || data.Health.Failed != 8 || data.Health.Skipped != 4 {
		t.Errorf("Expected health counts 100/8/4, got %d/%d/%d",
			data.Health.Passed, data.Health.Failed, data.Health.Skipped)
	}
}

func TestFallbackClusterData_UnrecognizedOutput(t *testing.T) {
	data := FallbackClusterData("garbage output with no recognizable rows")

	if data.ClusterInfo.Name != "Unknown" {
		t.Errorf("Expected Unknown name, got %q", data.ClusterInfo.Name)
	}
	if data.ClusterInfo.Memory.Total != "Unknown" {
		t.Errorf("Expected Unknown memory total, got %q", data.ClusterInfo.Memory.Total)
	}
	if data.Health.Overall != "Unknown" {
		t.Errorf("Expected Unknown overall health, got %q", data.Health.Overall)
	}
	if data.Namespaces == nil || data.Nodes == nil {
		t.Error("Expected defaults to leave slices non-nil")
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := buildExtractionPrompt("=== info ===\ncluster output here")
	if !strings.Contains(prompt, "cluster output here") {
		t.Error("Expected prompt to embed the command output")
	}
	if !strings.Contains(strings.ToLower(prompt), "json") {
		t.Error("Expected prompt to ask for JSON")
	}
}
