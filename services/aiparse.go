// ABOUTME: Structured-parsing collaborator turning combined asadm output into ClusterData.
// ABOUTME: Calls the Anthropic Messages API and decodes the model's JSON tolerantly with gjson.

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fleetops/aerospike-health-analyzer/models"
	"github.com/tidwall/gjson"
)

// AnthropicParser extracts structured cluster data from raw diagnostic
// command output using the Anthropic Messages API.
type AnthropicParser struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicParser creates a parser using the given API key and model.
func NewAnthropicParser(apiKey, model string) *AnthropicParser {
	return &AnthropicParser{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 8192,
	}
}

// Parse sends the combined command output to the model and decodes the
// response. The partial flag reports that usable data came back with known
// gaps; an error means no usable data at all.
func (p *AnthropicParser) Parse(ctx context.Context, combined string) (*models.ClusterData, bool, error) {
	prompt := buildExtractionPrompt(combined)

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("model request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	raw := sb.String()
	slog.Debug("Model response received", "length", len(raw))

	return DecodeClusterData(raw)
}

// buildExtractionPrompt asks for pure JSON with per-node write counter
// arrays; summation happens on our side so the model never does arithmetic.
func buildExtractionPrompt(combined string) string {
	var sb strings.Builder
	sb.WriteString(`Parse this Aerospike cluster data and return ONLY valid JSON (no markdown, no code blocks).

For clientWrites, find the 'show stat like client_write' section with node-by-node statistics:
1. Find the rows for 'client_write_success' and 'xdr_client_write_success'
2. Extract the individual values for each node as arrays (do NOT sum them)
3. Also extract the corresponding node names/addresses

Return this shape:
{
  "clusterInfo": {
    "name": "...", "version": "...", "size": 0, "namespaces": 0,
    "memory": {"total": "...", "used": "...", "usedPercent": "..."},
    "license": {"usage": "...", "usagePercent": "...", "total": "..."}
  },
  "nodes": [{"node": "...", "status": "...", "uptime": "...", "connections": "..."}],
  "namespaces": [{
    "name": "...", "objects": "...", "memoryUsed": "...", "memoryUsedPercent": "...",
    "replicationFactor": 0,
    "license": {"usage": "...", "usagePercent": "..."},
    "clientWrites": {
      "nodeNames": ["..."],
      "clientWriteSuccessPerNode": [0],
      "xdrClientWriteSuccessPerNode": [0]
    }
  }],
  "health": {"overall": "...", "passed": 0, "failed": 0, "skipped": 0, "issues": ["..."]}
}

Use "" for unknown strings and 0 for unknown numbers. Omit nothing.

Data to parse:
`)
	sb.WriteString(combined)
	return sb.String()
}

// DecodeClusterData turns raw model output into a ClusterData payload.
// Markdown fences are stripped, numbers inside strings (with units or
// thousands separators) are tolerated, and every field gets its default.
// Returns partial=true when the payload decodes but has known gaps.
func DecodeClusterData(raw string) (*models.ClusterData, bool, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, false, errors.New("model returned empty response")
	}
	if !gjson.Valid(cleaned) {
		return nil, false, errors.New("model returned invalid JSON")
	}

	root := gjson.Parse(cleaned)
	if !root.Get("clusterInfo").Exists() && !root.Get("namespaces").Exists() {
		return nil, false, errors.New("model response has neither cluster info nor namespaces")
	}

	data := &models.ClusterData{
		ClusterInfo: decodeClusterInfo(root.Get("clusterInfo")),
		Health:      decodeHealth(root.Get("health")),
	}

	root.Get("nodes").ForEach(func(_, node gjson.Result) bool {
		data.Nodes = append(data.Nodes, models.NodeInfo{
			Node:        node.Get("node").String(),
			Status:      node.Get("status").String(),
			Uptime:      node.Get("uptime").String(),
			Connections: node.Get("connections").String(),
		})
		return true
	})

	root.Get("namespaces").ForEach(func(_, ns gjson.Result) bool {
		data.Namespaces = append(data.Namespaces, decodeNamespace(ns))
		return true
	})

	data.ApplyDefaults()
	data.ComputeDerivedMetrics()

	partial := data.ClusterInfo.Name == "" || len(data.Namespaces) == 0
	return data, partial, nil
}

func decodeClusterInfo(info gjson.Result) models.ClusterInfo {
	return models.ClusterInfo{
		Name:           info.Get("name").String(),
		Version:        info.Get("version").String(),
		Size:           int(models.NumericOrZero(info.Get("size").String())),
		NamespaceCount: int(models.NumericOrZero(info.Get("namespaces").String())),
		Memory: models.MemoryInfo{
			Total:       info.Get("memory.total").String(),
			Used:        info.Get("memory.used").String(),
			UsedPercent: info.Get("memory.usedPercent").String(),
		},
		License: decodeLicense(info.Get("license")),
	}
}

func decodeLicense(license gjson.Result) models.LicenseInfo {
	return models.LicenseInfo{
		Usage:        license.Get("usage").String(),
		UsagePercent: license.Get("usagePercent").String(),
		Total:        license.Get("total").String(),
	}
}

func decodeNamespace(ns gjson.Result) models.Namespace {
	out := models.Namespace{
		Name:              ns.Get("name").String(),
		Objects:           ns.Get("objects").String(),
		MemoryUsed:        ns.Get("memoryUsed").String(),
		MemoryUsedPercent: ns.Get("memoryUsedPercent").String(),
		ReplicationFactor: int(models.NumericOrZero(ns.Get("replicationFactor").String())),
		License:           decodeLicense(ns.Get("license")),
	}

	cw := ns.Get("clientWrites")
	cw.Get("nodeNames").ForEach(func(_, v gjson.Result) bool {
		out.ClientWrites.NodeNames = append(out.ClientWrites.NodeNames, v.String())
		return true
	})
	out.ClientWrites.ClientWriteSuccessPerNode = decodeCounterArray(cw.Get("clientWriteSuccessPerNode"))
	out.ClientWrites.XdrClientWriteSuccessPerNode = decodeCounterArray(cw.Get("xdrClientWriteSuccessPerNode"))

	return out
}

// decodeCounterArray tolerates numbers, "23,095"-style strings, and junk
// entries (which contribute zero rather than poisoning the sum).
func decodeCounterArray(arr gjson.Result) []float64 {
	var out []float64
	arr.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.Number {
			out = append(out, v.Num)
		} else {
			out = append(out, models.NumericOrZero(v.String()))
		}
		return true
	})
	return out
}

func decodeHealth(health gjson.Result) models.HealthSummary {
	out := models.HealthSummary{
		Overall: health.Get("overall").String(),
		Passed:  int(health.Get("passed").Int()),
		Failed:  int(health.Get("failed").Int()),
		Skipped: int(health.Get("skipped").Int()),
	}
	health.Get("issues").ForEach(func(_, v gjson.Result) bool {
		out.Issues = append(out.Issues, v.String())
		return true
	})
	return out
}

// FallbackClusterData scrapes basic cluster facts straight out of the
// combined command output when structured parsing fails. asadm's summary
// tables carry the cluster name, version, size, and health counters in
// recognizable "label | value" rows; recovering those is enough to show a
// degraded result instead of discarding the bundle.
func FallbackClusterData(combined string) *models.ClusterData {
	data := &models.ClusterData{
		ClusterInfo: models.ClusterInfo{
			Name:    "Unknown",
			Version: "Unknown",
			Memory:  models.MemoryInfo{Total: "Unknown", Used: "Unknown", UsedPercent: "Unknown"},
			License: models.LicenseInfo{Usage: "Unknown", UsagePercent: "Unknown", Total: "Unknown"},
		},
		Health: models.HealthSummary{Overall: "Unknown"},
	}

	for _, line := range strings.Split(combined, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "Cluster Name"):
			data.ClusterInfo.Name = lastTableCell(line)
		case strings.Contains(line, "Server Version"):
			data.ClusterInfo.Version = lastTableCell(line)
		case strings.Contains(line, "Cluster Size"):
			if n, err := strconv.Atoi(lastTableCell(line)); err == nil {
				data.ClusterInfo.Size = n
			}
		case strings.Contains(line, "Namespaces Active"):
			if n, err := strconv.Atoi(lastTableCell(line)); err == nil {
				data.ClusterInfo.NamespaceCount = n
			}
		case strings.Contains(line, "Passed:") && strings.Contains(line, "Failed:"):
			scrapeHealthCounts(line, &data.Health)
		}
	}

	data.ApplyDefaults()
	return data
}

func lastTableCell(line string) string {
	parts := strings.Split(line, "|")
	return strings.TrimSpace(parts[len(parts)-1])
}

// scrapeHealthCounts reads "Total: N Passed: N Failed: N Skipped: N" rows.
func scrapeHealthCounts(line string, h *models.HealthSummary) {
	fields := strings.Fields(line)
	for i := 0; i+1 < len(fields); i++ {
		n, err := strconv.Atoi(strings.TrimSuffix(fields[i+1], ","))
		if err != nil {
			continue
		}
		switch fields[i] {
		case "Passed:":
			h.Passed = n
		case "Failed:":
			h.Failed = n
		case "Skipped:":
			h.Skipped = n
		}
	}
}

// stripFences removes markdown code fences the model sometimes wraps
// around its JSON output.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
