package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned for lesson durations that are not 1-3 colon separated numbers.
var ErrInvalidDuration = errors.New("invalid duration")

// ParseDuration converts a lesson duration string into seconds.
//
//	"45"       -> 45
//	"05:00"    -> 300
//	"01:02:03" -> 3723
//
// Components are not range checked: "99:99" is 99 minutes and 99 seconds.
// Totals above math.MaxInt32 seconds are rejected.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q has more than 3 parts", ErrInvalidDuration, s)
	}

	total := 0
	for _, p := range parts {
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		if n > math.MaxInt32 || total > (math.MaxInt32-n)/60 {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidDuration, s)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTotalDuration renders a number of seconds as "1h 05m" or "42m".
func FormatTotalDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
