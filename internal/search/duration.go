package search

import (
	"strconv"
	"strings"
)

// Unavailable is the per-item marker substituted when a travel-time lookup
// fails or the upstream reports no route.
const Unavailable = "N/A"

// ParseDuration parses a Distance Matrix duration string ("18 mins",
// "1 hour 5 mins", "2 hours") into whole minutes.
//
// ok=false means unknown: empty input, the Unavailable marker, or text that
// matches neither component. A literal "0 mins" is a valid zero-minute
// duration, distinct from unparseable input.
func ParseDuration(s string) (minutes int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == Unavailable {
		return 0, false
	}

	total := 0
	matched := false

	if i := strings.Index(s, "hour"); i >= 0 {
		h, err := strconv.Atoi(strings.TrimSpace(s[:i]))
		if err != nil {
			return 0, false
		}
		total += h * 60
		matched = true

		s = strings.TrimSpace(strings.TrimPrefix(s[i+len("hour"):], "s"))
	}

	if i := strings.Index(s, "min"); i >= 0 {
		fields := strings.Fields(s[:i])
		if len(fields) == 0 {
			return 0, false
		}
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return 0, false
		}
		total += n
		matched = true
	}

	if !matched {
		return 0, false
	}
	return total, true
}
