package listview

import "strings"

// Filter keeps the rows whose text fields contain term (case-insensitive)
// and, when equal is set, whose equalField matches it exactly. Both filters
// are optional; the result is never nil.
func Filter[T any](rows []T, term string, textFields func(T) []string, equal string, equalField func(T) string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	equal = strings.TrimSpace(equal)

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if equal != "" && equalField != nil && equalField(r) != equal {
			continue
		}
		if term != "" && !containsAny(textFields(r), term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func containsAny(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Distinct returns the non-empty values of field in first-seen order.
func Distinct[T any](rows []T, field func(T) string) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0)
	for _, r := range rows {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
