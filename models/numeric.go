// ABOUTME: Tolerant numeric extraction from raw metric values.
// ABOUTME: Accepts numbers or strings with unit suffixes; never panics.

package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseNumeric extracts the numeric magnitude from a raw metric value such
// as "12.3 GB", "1,234", 42, or "N/A". Every rune that is not a digit or a
// decimal point is stripped before parsing. Returns NaN when the input is
// absent or no numeric prefix survives the strip.
func ParseNumeric(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return math.NaN()
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		return ParseNumeric(v.String())
	case string:
		return parseNumericString(v)
	default:
		return math.NaN()
	}
}

func parseNumericString(s string) float64 {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	if stripped == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// NumericOrZero parses like ParseNumeric but maps "no value" to zero, the
// contract rollup sums rely on.
func NumericOrZero(value interface{}) float64 {
	f := ParseNumeric(value)
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// HasNumeric reports whether a usable numeric value could be extracted.
func HasNumeric(value interface{}) bool {
	return !math.IsNaN(ParseNumeric(value))
}
