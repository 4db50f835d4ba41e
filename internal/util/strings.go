// Package util provides common utility functions used across the codebase.
package util

import (
	"fmt"
	"strconv"
	"strings"
)

// JoinOrNone joins strings with ", " or returns "(none)" for empty slices.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// ParsePIDs parses a comma separated pid list such as "12, 40,7".
// Empty parts are skipped; order is kept and duplicates are dropped.
func ParsePIDs(raw string) ([]int32, error) {
	var pids []int32
	seen := make(map[int32]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 32)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid pid %q", part)
		}
		pid := int32(n)
		if seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids, nil
}

// FormatPIDs renders pids the way ParsePIDs reads them, or "(none)".
func FormatPIDs(pids []int32) string {
	parts := make([]string, len(pids))
	for i, p := range pids {
		parts[i] = strconv.Itoa(int(p))
	}
	return JoinOrNone(parts)
}
