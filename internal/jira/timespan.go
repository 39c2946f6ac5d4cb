package jira

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Jira counts a working day as 8 hours and a week as 5 days.
const (
	jiraDay  = 8 * time.Hour
	jiraWeek = 5 * jiraDay
)

var (
	jiraTimePart    = regexp.MustCompile(`^(\d+(?:\.\d+)?)([wdhms])$`)
	jiraTimeMinutes = regexp.MustCompile(`^\d+$`)
)

// ParseJiraTime parses Jira time notation such as "1d 2h 30m".
// A bare number is taken as minutes. Signed values are rejected.
func ParseJiraTime(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}
	if jiraTimeMinutes.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		return time.Duration(n) * time.Minute, nil
	}

	var total time.Duration
	for _, part := range strings.Fields(s) {
		m := jiraTimePart.FindStringSubmatch(part)
		if m == nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		total += time.Duration(n * float64(unitOf(m[2])))
	}
	return total, nil
}

// FormatJiraTime renders d in Jira notation using hours and minutes, e.g. "2h 5m".
// Durations below one minute render as "0m".
func FormatJiraTime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	if d <= 0 {
		return "0m"
	}
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func unitOf(u string) time.Duration {
	switch u {
	case "w":
		return jiraWeek
	case "d":
		return jiraDay
	case "h":
		return time.Hour
	case "m":
		return time.Minute
	default:
		return time.Second
	}
}
