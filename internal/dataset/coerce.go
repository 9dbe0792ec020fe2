package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric strips every character except digits, '.' and '-' and
// parses the remainder as a float. It reports whether the value was a
// genuine finite number.
func ParseNumeric(s string) (float64, bool) {
	raw := stripNonNumeric(strings.TrimSpace(s))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Coerce converts a cell to a number the way the analysis pipeline
// expects: unparseable values become 0 rather than being dropped.
//
// Known quirk, preserved deliberately: a genuinely non-numeric cell
// contributes a silent 0, which inflates a column's count without
// inflating its sum. Downstream statistics depend on this behavior.
func Coerce(s string) float64 {
	f, ok := ParseNumeric(s)
	if !ok {
		return 0
	}
	return f
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
