// Package humanize formats durations for people.
package humanize

import (
	"strconv"
	"strings"
)

type unit struct {
	name    string
	seconds uint64
}

var units = []unit{
	{"Week", 7 * 24 * 3600},
	{"Day", 24 * 3600},
	{"Hour", 3600},
	{"Minute", 60},
	{"Second", 1},
}

// Seconds renders secs as "N Unit(s)" parts joined by ", ", largest unit
// first, skipping zero parts. Zero is "0 seconds"; a negative value is
// rendered as its magnitude with a leading "-".
//
// Examples:
//
//	Seconds(60)     → "1 Minute"
//	Seconds(90061)  → "1 Day, 1 Hour, 1 Minute, 1 Second"
//	Seconds(1209600) → "2 Weeks"
func Seconds(secs int) string {
	if secs == 0 {
		return "0 seconds"
	}

	// The magnitude is unsigned so math.MinInt does not overflow on negation.
	sign := ""
	rest := uint64(secs)
	if secs < 0 {
		sign = "-"
		rest = uint64(-(secs + 1)) + 1
	}

	parts := make([]string, 0, len(units))
	for _, u := range units {
		n := rest / u.seconds
		if n == 0 {
			continue
		}
		rest -= n * u.seconds

		part := strconv.FormatUint(n, 10) + " " + u.name
		if n > 1 {
			part += "s"
		}
		parts = append(parts, part)
	}

	return sign + strings.Join(parts, ", ")
}
