// Package grading holds the null-aware averaging used for semester and final grades.
package grading

import (
	"math"
	"strconv"
	"strings"
)

// Pair combines two optional grades. Both absent yields nil, a single present
// value is returned as is, otherwise the mean is rounded half up.
//
// The same rule derives s1 from (q1, q2), s2 from (q3, q4) and the final
// grade from (s1, s2).
func Pair(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return Int(*b)
	case b == nil:
		return Int(*a)
	}
	mean := float64(*a+*b) / 2
	return Int(int(math.Floor(mean + 0.5)))
}

// Parse reads a grade leniently: anything other than a run of decimal digits
// is treated as absent.
func Parse(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return nil
		}
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil
	}
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
