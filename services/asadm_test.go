package services

import (
	"strings"
	"testing"
)

func TestCombineResults(t *testing.T) {
	results := []CommandResult{
		{Command: "info", Stdout: "cluster info output", Success: true},
		{Command: "summary", Stderr: "timed out", ExitCode: 1},
	}

	combined := CombineResults(results)

	if !strings.Contains(combined, "=== INFO ===") {
		t.Error("Expected a section header for the successful command")
	}
	if !strings.Contains(combined, "cluster info output") {
		t.Error("Expected stdout of the successful command")
	}
	if !strings.Contains(combined, "=== SUMMARY (FAILED) ===") {
		t.Error("Expected a failed marker for the unsuccessful command")
	}
	if !strings.Contains(combined, "Error: timed out") {
		t.Error("Expected the stderr of the failed command")
	}
}

func TestCombineResults_Empty(t *testing.T) {
	if got := CombineResults(nil); got != "" {
		t.Errorf("Expected empty output for no results, got %q", got)
	}
}
