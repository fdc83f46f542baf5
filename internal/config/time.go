package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParseTimeRef parses an absolute timestamp, or a relative duration
// subtracted from now (e.g. "30m", "1d2h").
func ParseTimeRef(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("time reference is empty")
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	d, err := ParseDuration(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(-d), nil
}

var durationUnitRe = regexp.MustCompile(`(\d+)([dhms])`)

// ParseDuration parses standard Go durations plus a "d" unit for
// days. Examples: "90s", "5m", "1h30m", "2d".
func ParseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	matches := durationUnitRe.FindAllStringSubmatch(s, -1)
	matchedLen := 0
	for _, m := range matches {
		matchedLen += len(m[0])
	}
	if len(matches) == 0 || matchedLen != len(s) {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	total := time.Duration(0)
	for _, m := range matches {
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		switch m[2] {
		case "d":
			total += 24 * time.Hour * time.Duration(value)
		case "h":
			total += time.Hour * time.Duration(value)
		case "m":
			total += time.Minute * time.Duration(value)
		case "s":
			total += time.Second * time.Duration(value)
		}
	}
	return total, nil
}
