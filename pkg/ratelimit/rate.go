package ratelimit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseRate parses a byte rate such as "512K", "10M", "1G" or "2048".
// Suffixes are binary multiples and may end in "B"; "" and "0" mean unlimited.
func ParseRate(rate string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(rate))
	if s == "" {
		return 0, nil
	}

	s = strings.TrimSuffix(s, "B")
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1 << 10
	case strings.HasSuffix(s, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(s, "G"):
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid rate %q (examples: 512K, 10M, 1G)", rate)
	}

	total := v * float64(multiplier)
	if total >= math.MaxInt64 {
		return 0, fmt.Errorf("rate %q is too large", rate)
	}
	if v > 0 && total < 1 {
		return 0, fmt.Errorf("rate %q is below one byte per second", rate)
	}
	return int64(total), nil
}
