package handlers

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var errInvalidInput = errors.New("invalid input")

// parsePositiveInt accepts a positive whole number, nothing else.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, errInvalidInput
	}
	return n, nil
}

// parseReminderTimes parses a comma-separated list of "HH:MM" clock
// times, normalizes them to two-digit form and sorts them. Duplicates
// collapse. At least one time is required.
func parseReminderTimes(s string) ([]string, error) {
	seen := make(map[string]bool)
	var times []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// time.Parse is lenient about the hour, so "8:00" passes too.
		t, err := time.Parse("15:04", part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidInput, part)
		}
		norm := t.Format("15:04")
		if !seen[norm] {
			seen[norm] = true
			times = append(times, norm)
		}
	}
	if len(times) == 0 {
		return nil, errInvalidInput
	}
	sort.Strings(times)
	return times, nil
}
