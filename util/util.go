// Package util contains misc internal utilities.
package util

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// AllElementsNumbers returns true if every rune of s is a digit or a decimal
// point, i.e. s is a bare number with no unit
func AllElementsNumbers(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	}) == -1
}

// ParseDuration is time.ParseDuration which treats a bare number as seconds
func ParseDuration(s string) (time.Duration, error) {
	if AllElementsNumbers(s) {
		s += "s"
	}
	return time.ParseDuration(s)
}

// SecsToDuration converts a number of seconds to a Duration, rounding to
// the nearest nanosecond
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * 1e9))
}

// Clamp limits input to the range [low, high]
func Clamp(input, low, high float64) float64 {
	if input < low {
		return low
	}
	if input > high {
		return high
	}
	return input
}
