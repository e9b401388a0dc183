package dashboard_test

import (
	"testing"

	"agency-service/internal/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTable(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range dashboard.Actions() {
		assert.NotEmpty(t, a.String(), "action %d has no tag", int(a))
		assert.NotEmpty(t, a.Label(), "action %s has no label", a)
		assert.NotEmpty(t, a.Icon(), "action %s has no icon", a)
		assert.False(t, seen[a.String()], "duplicate tag %s", a)
		seen[a.String()] = true
	}
	assert.Len(t, dashboard.Actions(), 8)
}

func TestParseAction(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, a := range dashboard.Actions() {
			parsed, err := dashboard.ParseAction(a.String())
			require.NoError(t, err)
			assert.Equal(t, a, parsed)
		}
	})

	t.Run("CaseAndSpace", func(t *testing.T) {
		a, err := dashboard.ParseAction(" Issue_Card ")
		require.NoError(t, err)
		assert.Equal(t, dashboard.ActionIssueCard, a)
	})

	t.Run("UnknownTag", func(t *testing.T) {
		for _, tag := range []string{"", "archive", "view details"} {
			_, err := dashboard.ParseAction(tag)
			assert.ErrorIs(t, err, dashboard.ErrUnknownAction, "tag %q", tag)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		a := dashboard.Action(99)
		assert.Equal(t, "Action(99)", a.String())
		assert.Empty(t, a.Label())
		assert.Empty(t, a.Icon())
	})
}
