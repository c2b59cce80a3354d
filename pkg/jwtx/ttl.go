package jwtx

import (
	"strconv"
	"strings"
	"time"
)

// ParseTTL converts compact lifetime strings ("30s", "15m", "1h", "7d")
// into durations. Plain Go durations are accepted too. A bare or
// unrecognized unit falls back to seconds, matching the mobile clients'
// existing configuration values.
func ParseTTL(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// A bare integer is a second count.
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Second, true
	}

	unit := s[len(s)-1]
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		// Not "<int><unit>"; try a full Go duration ("1h30m").
		if d, derr := time.ParseDuration(s); derr == nil && d > 0 {
			return d, true
		}
		return 0, false
	}
	if value <= 0 {
		return 0, false
	}

	switch unit {
	case 's':
		return time.Duration(value) * time.Second, true
	case 'm':
		return time.Duration(value) * time.Minute, true
	case 'h':
		return time.Duration(value) * time.Hour, true
	case 'd':
		return time.Duration(value) * 24 * time.Hour, true
	default:
		return time.Duration(value) * time.Second, true
	}
}
