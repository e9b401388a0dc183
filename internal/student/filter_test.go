package student_test

import (
	"testing"
	"time"

	"agency-service/internal/schema"
	"agency-service/internal/student"

	"github.com/stretchr/testify/assert"
)

func sampleStudents() []student.Student {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []student.Student{
		{ID: 1, FirstName: "Ada", LastName: "Okafor", Email: "ada@example.com", Status: schema.StudentActive, CreatedAt: base},
		{ID: 2, FirstName: "Ben", LastName: "Liu", Email: "ben@example.com", Status: schema.StudentPending, IsHighPriority: true, CreatedAt: base.Add(48 * time.Hour)},
		{ID: 3, FirstName: "Chen", LastName: "Ito", Email: "chen@example.com", Status: schema.StudentActive, IsHighPriority: true},
		{ID: 4, FirstName: "Dana", LastName: "Sousa", Email: "dana@example.com", Status: schema.StudentInactive, CreatedAt: base.Add(48 * time.Hour)},
	}
}

func ids(list []student.Student) []int {
	out := make([]int, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Run("UnknownToken_ReturnsInputUnchanged", func(t *testing.T) {
		input := sampleStudents()
		for _, token := range []string{"", "all", "ACTIVE", "graduated"} {
			assert.Equal(t, input, student.Filter(input, token), "token %q", token)
		}
	})

	t.Run("UnknownToken_ReturnsCopy", func(t *testing.T) {
		input := sampleStudents()
		out := student.Filter(input, "whatever")
		out[0].FirstName = "Changed"
		assert.Equal(t, "Ada", input[0].FirstName)
	})

	t.Run("Active", func(t *testing.T) {
		assert.Equal(t, []int{1, 3}, ids(student.Filter(sampleStudents(), student.FilterActive)))
	})

	t.Run("HighPriority", func(t *testing.T) {
		out := student.Filter(sampleStudents(), student.FilterHighPriority)
		assert.Equal(t, []int{2, 3}, ids(out))
		for _, s := range out {
			assert.True(t, s.IsHighPriority)
		}
	})

	t.Run("HighPriority_EmptyInput", func(t *testing.T) {
		assert.Empty(t, student.Filter(nil, student.FilterHighPriority))
		assert.Empty(t, student.Filter([]student.Student{}, student.FilterHighPriority))
	})

	t.Run("RecentlyAdded_DescendingAndStable", func(t *testing.T) {
		input := sampleStudents()
		out := student.Filter(input, student.FilterRecentlyAdded)

		// 2 and 4 share a timestamp and keep input order; 3 has none and sorts last
		assert.Equal(t, []int{2, 4, 1, 3}, ids(out))
		assert.Equal(t, []int{1, 2, 3, 4}, ids(input), "input must not be reordered")
	})

	t.Run("RecentlyAdded_MissingTimestampIsEpoch", func(t *testing.T) {
		input := []student.Student{
			{ID: 1},
			{ID: 2, CreatedAt: time.Unix(-86400, 0).UTC()},
		}
		assert.Equal(t, []int{1, 2}, ids(student.Filter(input, student.FilterRecentlyAdded)))
	})
}

func TestSearch(t *testing.T) {
	input := sampleStudents()

	assert.Equal(t, []int{2}, ids(student.Search(input, "LIU")))
	assert.Equal(t, []int{3}, ids(student.Search(input, "chen@")))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(student.Search(input, "  ")))
	assert.Empty(t, student.Search(input, "zzz"))
}
