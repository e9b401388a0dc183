package student

import (
	"slices"
	"strings"
	"time"

	"agency-service/internal/schema"
)

// Filter tokens understood by Filter. Anything else returns the list unchanged.
const (
	FilterActive        = "active"
	FilterHighPriority  = "high_priority"
	FilterRecentlyAdded = "recently_added"
)

// Filter derives a view of list for token. The input slice is never
// modified; the result is always a fresh slice.
func Filter(list []Student, token string) []Student {
	switch token {
	case FilterActive:
		return keep(list, func(s Student) bool { return s.Status == schema.StudentActive })
	case FilterHighPriority:
		return keep(list, func(s Student) bool { return s.IsHighPriority })
	case FilterRecentlyAdded:
		out := slices.Clone(list)
		slices.SortStableFunc(out, func(a, b Student) int {
			return createdOrEpoch(b).Compare(createdOrEpoch(a))
		})
		return out
	default:
		return slices.Clone(list)
	}
}

// Search keeps students whose name or email contains text, case-insensitively.
func Search(list []Student, text string) []Student {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return slices.Clone(list)
	}
	return keep(list, func(s Student) bool {
		return strings.Contains(strings.ToLower(s.FullName()), text) ||
			strings.Contains(strings.ToLower(s.Email), text)
	})
}

// createdOrEpoch treats a missing timestamp as the Unix epoch.
func createdOrEpoch(s Student) time.Time {
	if s.CreatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return s.CreatedAt
}

func keep(list []Student, pred func(Student) bool) []Student {
	out := make([]Student, 0, len(list))
	for _, s := range list {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}
