package models

import (
	"math"
	"testing"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  float64
		isNaN bool
	}{
		{"plain number", 42, 42, false},
		{"float", 12.5, 12.5, false},
		{"magnitude with unit", "12.3 GB", 12.3, false},
		{"terabytes text", "1.25 TB", 1.25, false},
		{"thousands separators", "23,095", 23095, false},
		{"noise characters", " ~1.1 TB* ", 1.1, false},
		{"not available", "N/A", math.NaN(), true},
		{"error text", "Error", math.NaN(), true},
		{"empty string", "", math.NaN(), true},
		{"absent", nil, math.NaN(), true},
		{"multiple dots", "1.2.3", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumeric(tt.input)
			if tt.isNaN {
				if !math.IsNaN(got) {
					t.Errorf("ParseNumeric(%v) = %v, want NaN", tt.input, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseNumeric(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNumericOrZero(t *testing.T) {
	if got := NumericOrZero("N/A"); got != 0 {
		t.Errorf("Expected N/A to contribute 0, got %v", got)
	}
	if got := NumericOrZero(nil); got != 0 {
		t.Errorf("Expected absent value to contribute 0, got %v", got)
	}
	if got := NumericOrZero("10.5 GB"); got != 10.5 {
		t.Errorf("Expected 10.5, got %v", got)
	}
}

func TestHasNumeric(t *testing.T) {
	if HasNumeric("N/A") {
		t.Error("Expected N/A to have no numeric value")
	}
	if !HasNumeric("7 GB") {
		t.Error("Expected 7 GB to have a numeric value")
	}
}
