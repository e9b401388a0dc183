package university_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"agency-service/internal/events"
	"agency-service/internal/logger"
	"agency-service/internal/metrics"
	"agency-service/internal/schema"
	"agency-service/internal/university"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (chi.Router, *events.Recorder) {
	t.Helper()
	recorder := &events.Recorder{}
	log := logger.Discard()
	service := university.NewService(newMemRepo(), events.NewEmitter(recorder, log))
	handler := university.NewHandler(service, log, metrics.NewMock())

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router, recorder
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createUniversity(t *testing.T, router http.Handler, name string) university.University {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/universities", map[string]any{
		"name":    name,
		"country": "United Kingdom",
		"tier":    "tier1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created university.University
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	return created
}

func TestUniversityHandler(t *testing.T) {
	t.Run("CreateUniversity_Defaults", func(t *testing.T) {
		router, recorder := setupRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/universities", map[string]any{
			"name":    "University of Leeds",
			"country": "United Kingdom",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created university.University
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, schema.Tier2, created.Tier)
		assert.Equal(t, schema.PartnerPending, created.Status)
		assert.Equal(t, []string{events.UniversityCreated}, recorder.Types())
	})

	t.Run("CreateUniversity_Invalid", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/universities", map[string]any{
			"name":           "No Country",
			"tier":           "tier9",
			"commissionRate": 120,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		fields := response["fields"].(map[string]any)
		assert.Contains(t, fields, "country")
		assert.Contains(t, fields, "tier")
		assert.Contains(t, fields, "commissionRate")
	})

	t.Run("CreateUniversity_AgreementEndsBeforeStart", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/universities", map[string]any{
			"name":           "Backwards",
			"country":        "Canada",
			"agreementStart": "2026-09-01T00:00:00Z",
			"agreementEnd":   "2026-01-01T00:00:00Z",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "agreementEnd")
	})

	t.Run("GetAllUniversities", func(t *testing.T) {
		router, _ := setupRouter(t)
		createUniversity(t, router, "Monash University")
		createUniversity(t, router, "Aalto University")

		w := doJSON(t, router, http.MethodGet, "/api/universities", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list []university.University
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "Aalto University", list[0].Name)
	})

	t.Run("UpdateUniversity", func(t *testing.T) {
		router, _ := setupRouter(t)
		created := createUniversity(t, router, "Old Name")

		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/universities/%d", created.ID), map[string]any{
			"name":    "New Name",
			"country": "Ireland",
			"status":  "active",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var updated university.University
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, "New Name", updated.Name)
		assert.Equal(t, schema.PartnerActive, updated.Status)
	})

	t.Run("UpdateUniversity_NotFound", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := doJSON(t, router, http.MethodPut, "/api/universities/77", map[string]any{
			"name": "Ghost", "country": "Nowhere",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteUniversity_RemovesPrograms", func(t *testing.T) {
		router, recorder := setupRouter(t)
		created := createUniversity(t, router, "Short Lived")
		w := doJSON(t, router, http.MethodPost, "/api/programs", map[string]any{
			"name": "BSc Physics", "universityId": created.ID, "level": "bachelor",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/universities/%d", created.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/programs/university/%d", created.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, []string{events.UniversityCreated, events.ProgramCreated, events.UniversityDeleted}, recorder.Types())
	})
}

func TestProgramHandler(t *testing.T) {
	t.Run("CreateAndListByUniversity", func(t *testing.T) {
		router, _ := setupRouter(t)
		uni := createUniversity(t, router, "University of Toronto")
		other := createUniversity(t, router, "McGill University")

		for _, name := range []string{"MSc Computer Science", "MBA"} {
			w := doJSON(t, router, http.MethodPost, "/api/programs", map[string]any{
				"name": name, "universityId": uni.ID, "level": "master", "tuitionFee": 42000,
			})
			require.Equal(t, http.StatusCreated, w.Code)
		}
		w := doJSON(t, router, http.MethodPost, "/api/programs", map[string]any{
			"name": "BA History", "universityId": other.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/programs/university/%d", uni.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var programs []university.Program
		require.NoError(t, json.NewDecoder(w.Body).Decode(&programs))
		require.Len(t, programs, 2)
		assert.Equal(t, "MBA", programs[0].Name)
		for _, p := range programs {
			assert.Equal(t, uni.ID, p.UniversityID)
		}
	})

	t.Run("UnknownUniversity", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/programs", map[string]any{
			"name": "Orphan", "universityId": 404,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "does not exist")
	})

	t.Run("MissingFields", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/programs", map[string]any{"level": "postdoc"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		fields := response["fields"].(map[string]any)
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "universityId")
		assert.Contains(t, fields, "level")
	})

	t.Run("ProgramsOfUnknownUniversity", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := doJSON(t, router, http.MethodGet, "/api/programs/university/12", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
