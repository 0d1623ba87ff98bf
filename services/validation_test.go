package services

import (
	"strings"
	"testing"
)

func TestValidateCustomerName(t *testing.T) {
	valid := []string{"Acme Corp", "acme-2026", "a", "Retail_EU.West", "42nd Street Bank"}
	for _, name := range valid {
		if err := ValidateCustomerName(name); err != nil {
			t.Errorf("Expected %q to be valid: %v", name, err)
		}
	}

	invalid := []string{"", "   ", "-starts-with-dash", ".hidden", "bad/slash", "semi;colon", strings.Repeat("x", 129)}
	for _, name := range invalid {
		if err := ValidateCustomerName(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

func TestValidateRegionName(t *testing.T) {
	if err := ValidateRegionName("us-east-1"); err != nil {
		t.Errorf("Expected region name to be valid: %v", err)
	}
	if err := ValidateRegionName("../etc"); err == nil {
		t.Error("Expected traversal-looking region name to be rejected")
	}
}

func TestValidateFilename(t *testing.T) {
	valid := []string{"collectinfo_prod.tgz", "dump1.zip", "report.txt", "upload-8f2a"}
	for _, name := range valid {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("Expected %q to be valid: %v", name, err)
		}
	}

	invalid := []string{"", "../escape.tgz", "dir/file.tgz", `win\path.tgz`, "dots..tgz"}
	for _, name := range invalid {
		if err := ValidateFilename(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

func TestSanitizeForLog(t *testing.T) {
	got := sanitizeForLog("inject\nfake log line\x1b[31m")
	if strings.ContainsAny(got, "\n\x1b") {
		t.Errorf("Expected control characters stripped, got %q", got)
	}
}
