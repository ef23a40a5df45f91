// Package strings provides small string-slice utilities shared across
// modules.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace from each element and drops blanks and
// repeats, preserving first-seen order. Business-option lists pass through
// here before they are joined into a stored answer, so "retail, retail"
// collapses to one option.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
