package youtube

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts an ISO 8601 video duration to seconds.
// Example: "PT4M13S" -> 253 seconds. Durations without a time component
// ("P0D", returned for upcoming premieres) parse to zero.
func ParseDuration(duration string) (int64, error) {
	if !strings.HasPrefix(duration, "P") {
		return 0, fmt.Errorf("invalid duration format: %s", duration)
	}

	tIdx := strings.Index(duration, "T")
	if tIdx == -1 {
		return 0, nil
	}
	rest := duration[tIdx+1:]

	var hours, minutes, seconds int64

	if hIdx := strings.Index(rest, "H"); hIdx != -1 {
		h, err := strconv.ParseInt(rest[:hIdx], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %s: %w", duration, err)
		}
		hours = h
		rest = rest[hIdx+1:]
	}

	if mIdx := strings.Index(rest, "M"); mIdx != -1 {
		m, err := strconv.ParseInt(rest[:mIdx], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %s: %w", duration, err)
		}
		minutes = m
		rest = rest[mIdx+1:]
	}

	if sIdx := strings.Index(rest, "S"); sIdx != -1 {
		s, err := strconv.ParseInt(rest[:sIdx], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %s: %w", duration, err)
		}
		seconds = s
	}

	return hours*3600 + minutes*60 + seconds, nil
}
