package util

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLimit parses a list limit. Empty means DefaultListLimit; anything outside
// [1, MaxListLimit] is rejected.
func ParseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultListLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxListLimit {
		return 0, ErrInvalidLimit
	}
	return n, nil
}

// ParseBool parses a query flag, falling back to def when empty or malformed.
func ParseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

// Percent returns part/whole*100 rounded to two decimals. whole must be positive.
func Percent(part, whole int) float64 {
	p := decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := p.Float64()
	return f
}
