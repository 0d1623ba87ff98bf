// ABOUTME: Input validation for customer names, region names, and filenames.
// ABOUTME: Prevents path traversal and log injection from user-supplied strings.

package services

import (
	"fmt"
	"regexp"
	"strings"
)

const maxNameLength = 128

// namePattern matches customer and region names: must start with a letter or
// digit, then letters, digits, spaces, dots, hyphens, underscores.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$`)

// sanitizeForLog removes control characters so user input can be echoed in
// error messages without log injection.
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// ValidateCustomerName checks a customer name for creation requests.
func ValidateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("customer name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("customer name exceeds %d characters", maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid customer name format: %s", sanitizeForLog(name))
	}
	return nil
}

// ValidateRegionName checks a region name for creation or upload requests.
func ValidateRegionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("region name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("region name exceeds %d characters", maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid region name format: %s", sanitizeForLog(name))
	}
	return nil
}

// ValidateFilename rejects path separators and traversal in uploaded names.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid filename: %s", sanitizeForLog(name))
	}
	return nil
}
