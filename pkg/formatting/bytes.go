// Package formatting provides parsing helpers for human-authored values:
// byte sizes in configuration and JSON documents wrapped in markdown fences.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var multipliers = map[string]float64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

var labels = []string{"B", "KB", "MB", "GB", "TB"}

// ParseBytes converts a size such as "10MB", "512 kb", or "2048" into bytes.
// Units are base-1024 and case-insensitive; a bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})

	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", number, err)
	}

	mult, ok := multipliers[strings.ToUpper(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return int64(value * mult), nil
}

// FormatBytes renders n with the largest unit that keeps the value at or above one.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	value, exp := float64(n), 0
	for value >= 1024 && exp < len(labels)-1 {
		value /= 1024
		exp++
	}

	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + labels[exp]
}
