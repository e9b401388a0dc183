package activity_test

import (
	"testing"
	"time"

	"agency-service/internal/activity"
	"agency-service/internal/metrics"
	"agency-service/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	pg := testdb.SetupSharedPostgres(t)
	pg.RunMigrations(t, (*activity.Entry)(nil))
	repo := activity.NewRepository(pg.DB, metrics.NewMock())
	testdb.CleanupTables(t, pg.DB, "activity_log")

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	entries := []*activity.Entry{
		{Type: "student.created", Entity: "student", EntityID: 1, OccurredAt: base, ReceivedAt: base},
		{Type: "card.issued", Entity: "card", EntityID: 4, OccurredAt: base.Add(time.Hour), ReceivedAt: base,
			Data: map[string]any{"cardNumber": "ISIC-1"}},
		{Type: "student.updated", Entity: "student", EntityID: 1, OccurredAt: base.Add(2 * time.Hour), ReceivedAt: base},
	}
	for _, e := range entries {
		require.NoError(t, repo.Create(t.Context(), e))
		assert.NotZero(t, e.ID)
	}

	t.Run("NewestFirst", func(t *testing.T) {
		got, err := repo.Recent(t.Context(), activity.Query{Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "student.updated", got[0].Type)
		assert.Equal(t, "ISIC-1", got[1].Data["cardNumber"])
	})

	t.Run("EntityAndLimit", func(t *testing.T) {
		got, err := repo.Recent(t.Context(), activity.Query{Entity: "student", Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "student.updated", got[0].Type)
	})
}
