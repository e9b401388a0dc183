package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agency-service/internal/event"
	"agency-service/internal/events"
	"agency-service/internal/logger"
	"agency-service/internal/metrics"
	"agency-service/internal/schema"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	list     []event.Event
	lastFrom time.Time
}

func (m *memRepo) Create(_ context.Context, e *event.Event) (*event.Event, error) {
	e.ID = len(m.list) + 1
	m.list = append(m.list, *e)
	return e, nil
}

func (m *memRepo) List(_ context.Context, from time.Time) ([]event.Event, error) {
	m.lastFrom = from
	out := []event.Event{}
	for _, e := range m.list {
		if from.IsZero() || !e.EndsAt.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func setupRouter(t *testing.T) (chi.Router, *memRepo, *events.Recorder) {
	t.Helper()
	repo := &memRepo{}
	recorder := &events.Recorder{}
	log := logger.Discard()
	handler := event.NewHandler(event.NewService(repo, events.NewEmitter(recorder, log)), log, metrics.NewMock())

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router, repo, recorder
}

func schedule(t *testing.T, router http.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(payload))
	req := httptest.NewRequest(http.MethodPost, "/api/events", &body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEventHandler(t *testing.T) {
	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	t.Run("ScheduleEvent", func(t *testing.T) {
		router, _, recorder := setupRouter(t)

		w := schedule(t, router, map[string]any{
			"title":     "  Autumn Education Fair  ",
			"eventType": "fair",
			"location":  "Lagos",
			"startsAt":  start,
			"endsAt":    start.Add(6 * time.Hour),
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created event.Event
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, "Autumn Education Fair", created.Title)
		assert.Equal(t, schema.EventFair, created.EventType)
		assert.Equal(t, []string{events.EventScheduled}, recorder.Types())
	})

	t.Run("DefaultsEndToStart", func(t *testing.T) {
		router, _, _ := setupRouter(t)

		w := schedule(t, router, map[string]any{"title": "Visa deadline", "eventType": "deadline", "startsAt": start})
		require.Equal(t, http.StatusCreated, w.Code)

		var created event.Event
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.True(t, created.EndsAt.Equal(created.StartsAt))
	})

	t.Run("TitleRequired", func(t *testing.T) {
		router, repo, _ := setupRouter(t)

		w := schedule(t, router, map[string]any{"startsAt": start})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title")

		w = schedule(t, router, map[string]any{"title": "   ", "startsAt": start})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, repo.list)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		router, repo, _ := setupRouter(t)

		w := schedule(t, router, map[string]any{
			"title":    "Backwards",
			"startsAt": start,
			"endsAt":   start.Add(-time.Hour),
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "endsAt")
		assert.Empty(t, repo.list)
	})

	t.Run("UnknownType", func(t *testing.T) {
		router, _, _ := setupRouter(t)
		w := schedule(t, router, map[string]any{"title": "Party", "eventType": "party", "startsAt": start})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UpcomingOnly", func(t *testing.T) {
		router, repo, _ := setupRouter(t)
		past := time.Now().Add(-48 * time.Hour).UTC()
		schedule(t, router, map[string]any{"title": "Past webinar", "startsAt": past, "endsAt": past.Add(time.Hour)})
		schedule(t, router, map[string]any{"title": "Next meeting", "startsAt": start})

		req := httptest.NewRequest(http.MethodGet, "/api/events?upcoming=true", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var list []event.Event
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 1)
		assert.Equal(t, "Next meeting", list[0].Title)
		assert.False(t, repo.lastFrom.IsZero())

		req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		assert.Len(t, list, 2)
	})
}
