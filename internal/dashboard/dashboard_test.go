package dashboard_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agency-service/internal/activity"
	"agency-service/internal/agent"
	"agency-service/internal/apiclient"
	"agency-service/internal/application"
	"agency-service/internal/auth"
	"agency-service/internal/dashboard"
	"agency-service/internal/dataaccess"
	"agency-service/internal/event"
	"agency-service/internal/querycache"
	"agency-service/internal/schema"
	"agency-service/internal/student"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, agentsDown bool) *httptest.Server {
	t.Helper()
	base := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)

	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, auth.AuthResponse{
			AccessToken: "token",
			User:        &auth.User{ID: 1, Username: "ada", FullName: "Ada Okafor", Role: schema.RoleAdmin},
		})
	})
	r.Get("/api/students", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []student.Student{
			{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Stage: schema.StageOffer, Status: schema.StudentActive, IsHighPriority: true},
			{ID: 2, FirstName: "Ben", LastName: "Liu", Email: "ben@example.com", Stage: schema.StageInquiry, Status: schema.StudentActive},
			{ID: 3, FirstName: "Chen", LastName: "Ito", Email: "chen@example.com", Stage: schema.StageInquiry, Status: schema.StudentPending, IsHighPriority: true},
		})
	})
	r.Get("/api/stats/students/stage-counts", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, student.StageCounts{schema.StageInquiry: 2, schema.StageOffer: 1})
	})
	r.Get("/api/applications", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []application.Application{
			{ID: 1, Stage: schema.AppSubmitted, Student: &student.Student{FirstName: "Ada", LastName: "Lovelace"}},
			{ID: 2, Stage: schema.AppSubmitted},
			{ID: 3, Stage: schema.AppOffer},
		})
	})
	r.Get("/api/agents", func(w http.ResponseWriter, _ *http.Request) {
		if agentsDown {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, []agent.Agent{{ID: 1, Name: "Kim", Company: "Study Abroad Ltd"}})
	})
	r.Get("/api/events", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("upcoming") != "true" {
			writeJSON(w, http.StatusOK, []event.Event{})
			return
		}
		// out of order, one more than the summary shows
		var events []event.Event
		for _, day := range []int{5, 1, 4, 6, 2, 3} {
			events = append(events, event.Event{ID: day, Title: "Event", StartsAt: base.AddDate(0, 0, day)})
		}
		writeJSON(w, http.StatusOK, events)
	})

	r.Get("/api/activity", func(w http.ResponseWriter, req *http.Request) {
		entries := []activity.Entry{
			{ID: 2, Type: "card.issued", Entity: "card", EntityID: 4, OccurredAt: base.Add(time.Hour)},
			{ID: 1, Type: "student.created", Entity: "student", EntityID: 1, OccurredAt: base},
		}
		if req.URL.Query().Get("entity") == "student" {
			entries = entries[1:]
		}
		writeJSON(w, http.StatusOK, entries)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newDashboard(t *testing.T, agentsDown bool) (*dashboard.Dashboard, *dataaccess.ToastLog, context.Context) {
	t.Helper()
	srv := newServer(t, agentsDown)
	toasts := &dataaccess.ToastLog{}
	d := dashboard.New(apiclient.New(srv.URL, 5*time.Second), toasts, querycache.WithRetries(0))
	return d, toasts, d.Context(context.Background())
}

func TestSummary(t *testing.T) {
	d, toasts, ctx := newDashboard(t, false)
	require.True(t, d.Session().Login(ctx, "ada", "secret"))

	view, err := d.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Welcome back, Ada Okafor", view.Greeting)
	assert.Equal(t, 3, view.TotalStudents)
	assert.Equal(t, 2, view.HighPriority)
	assert.Equal(t, 1, view.Agents)

	require.Len(t, view.Stages, len(schema.Stages()))
	assert.Equal(t, dashboard.StageCount{Stage: schema.StageInquiry, Count: 2}, view.Stages[0])
	assert.Equal(t, dashboard.StageCount{Stage: schema.StageAlumni, Count: 0}, view.Stages[len(view.Stages)-1])

	require.Len(t, view.Applications, len(schema.ApplicationStages()))
	assert.Equal(t, dashboard.ApplicationStageCount{Stage: schema.AppSubmitted, Count: 2}, view.Applications[1])

	require.Len(t, view.UpcomingEvents, 5)
	for i, e := range view.UpcomingEvents {
		assert.Equal(t, i+1, e.ID)
	}

	assert.Zero(t, toasts.Count(dataaccess.VariantDestructive))
}

func TestSummary_SignedOutGreeting(t *testing.T) {
	d, _, ctx := newDashboard(t, false)

	view, err := d.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", view.Greeting)
}

func TestSummary_QueryFailure(t *testing.T) {
	d, toasts, ctx := newDashboard(t, true)

	_, err := d.Summary(ctx)
	require.Error(t, err)
	assert.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
	assert.GreaterOrEqual(t, toasts.Count(dataaccess.VariantDestructive), 1)
}

func TestSummary_RequiresSession(t *testing.T) {
	d, _, _ := newDashboard(t, false)
	assert.Panics(t, func() {
		d.Summary(context.Background())
	})
}

func TestStudentsPage(t *testing.T) {
	d, _, ctx := newDashboard(t, false)

	view, err := d.Students(ctx, student.FilterHighPriority, "LOVE")
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)

	row := view.Rows[0]
	assert.Equal(t, "Ada Lovelace", row.Name)
	assert.True(t, row.HighPriority)
	assert.Contains(t, row.Actions, dashboard.ActionIssueCard)
	assert.Contains(t, row.Actions, dashboard.ActionAssignAgent)

	all, err := d.Students(ctx, "unknown", "")
	require.NoError(t, err)
	assert.Len(t, all.Rows, 3)
}

func TestApplicationsAndAgentsPages(t *testing.T) {
	d, _, ctx := newDashboard(t, false)

	apps, err := d.Applications(ctx, application.ListFilter{})
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "Ada Lovelace", apps[0].Student)
	assert.Empty(t, apps[1].Student)

	agents, err := d.Agents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "Kim (Study Abroad Ltd)", agents[0].Name)
}

func TestActivityPage(t *testing.T) {
	d, _, ctx := newDashboard(t, false)

	rows, err := d.Activity(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "card.issued", rows[0].Type)

	rows, err = d.Activity(ctx, "student", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var buf bytes.Buffer
	require.NoError(t, dashboard.RenderActivity(&buf, rows))
	assert.Contains(t, buf.String(), "student #1")
}

func TestRenderStudents(t *testing.T) {
	var buf bytes.Buffer
	err := dashboard.RenderStudents(&buf, dashboard.StudentsView{Rows: []dashboard.StudentRow{
		{ID: 7, Name: "Ada Lovelace", Email: "ada@example.com", Stage: schema.StageOffer, HighPriority: true, Actions: []dashboard.Action{dashboard.ActionView, dashboard.ActionDelete}},
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Ada Lovelace")
	assert.Contains(t, lines[1], "view,delete")

	buf.Reset()
	require.NoError(t, dashboard.RenderStudents(&buf, dashboard.StudentsView{}))
	assert.Contains(t, buf.String(), "No students found")
}

func TestRenderImportResult_EchoesPartition(t *testing.T) {
	// totals that do not add up are shown as received
	res := student.ImportResult{Total: 10, Imported: 1, Skipped: 2, Failed: 3,
		Errors: []student.RowError{{Row: 4, Reason: "email: must be a valid email"}}}

	var buf bytes.Buffer
	require.NoError(t, dashboard.RenderImportResult(&buf, res))

	out := buf.String()
	assert.Regexp(t, `Total\s+10`, out)
	assert.Regexp(t, `Imported\s+1`, out)
	assert.Regexp(t, `Skipped\s+2`, out)
	assert.Regexp(t, `Failed\s+3`, out)
	assert.Regexp(t, `4\s+email: must be a valid email`, out)
}

func TestPrintToasts(t *testing.T) {
	var buf bytes.Buffer
	n := dashboard.PrintToasts(&buf)
	n.Notify(dataaccess.Toast{Title: "Card issued"})
	n.Notify(dataaccess.Toast{Title: "Error", Description: "Something went wrong", Variant: dataaccess.VariantDestructive})

	assert.Equal(t, "[ok] Card issued\n[error] Error: Something went wrong\n", buf.String())
}
