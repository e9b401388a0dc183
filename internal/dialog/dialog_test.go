package dialog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"agency-service/internal/apiclient"
	"agency-service/internal/card"
	"agency-service/internal/dataaccess"
	"agency-service/internal/dialog"
	"agency-service/internal/querycache"
	"agency-service/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	calls   atomic.Int32
	handler http.HandlerFunc
}

func setup(t *testing.T, handler http.HandlerFunc) (*dataaccess.Store, *server, *dataaccess.ToastLog) {
	t.Helper()
	srv := &server{handler: handler}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.calls.Add(1)
		srv.handler(w, r)
	}))
	t.Cleanup(ts.Close)

	toasts := &dataaccess.ToastLog{}
	return dataaccess.NewStore(apiclient.New(ts.URL, 2*time.Second), querycache.New(), toasts), srv, toasts
}

func respond(code int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(body)
	}
}

func TestIssueCard(t *testing.T) {
	t.Run("EmptyNumberMakesNoCall", func(t *testing.T) {
		store, srv, toasts := setup(t, respond(http.StatusCreated, card.Card{ID: 1}))
		d := dialog.IssueCard(store, 7)
		d.Open()

		err := d.Submit(t.Context(), dialog.IssueCardInput{CardNumber: "   "})
		assert.ErrorIs(t, err, dialog.ErrValidation)
		assert.Zero(t, srv.calls.Load())
		assert.Equal(t, dialog.Idle, d.State())
		assert.Contains(t, d.FieldErrors(), "cardNumber")

		require.Len(t, toasts.Toasts(), 1)
		assert.Equal(t, "Validation error", toasts.Toasts()[0].Title)
		assert.Equal(t, dataaccess.VariantDestructive, toasts.Toasts()[0].Variant)
	})

	t.Run("SuccessClosesAndNotifiesParent", func(t *testing.T) {
		received := make(chan card.Card, 1)
		store, srv, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
			var c card.Card
			json.NewDecoder(r.Body).Decode(&c)
			c.ID = 1
			received <- c
			respond(http.StatusCreated, c)(w, r)
		})

		d := dialog.IssueCard(store, 7)
		refreshed := 0
		d.OnSuccess = func() { refreshed++ }
		d.Open()

		require.NoError(t, d.Submit(t.Context(), dialog.IssueCardInput{CardNumber: " isic-001 ", CardType: "isic"}))
		assert.Equal(t, dialog.Closed, d.State())
		assert.Equal(t, 1, refreshed)
		assert.EqualValues(t, 1, srv.calls.Load())
		sent := <-received
		assert.Equal(t, 7, sent.StudentID)
		assert.Equal(t, "isic-001", sent.CardNumber)
	})

	t.Run("FailureThenRetry", func(t *testing.T) {
		var fail atomic.Bool
		fail.Store(true)
		store, srv, toasts := setup(t, func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				respond(http.StatusConflict, map[string]string{"error": "card number already issued"})(w, r)
				return
			}
			respond(http.StatusCreated, card.Card{ID: 2, StudentID: 7})(w, r)
		})

		d := dialog.IssueCard(store, 7)
		d.Open()
		input := dialog.IssueCardInput{CardNumber: "ISIC-002"}

		assert.Error(t, d.Submit(t.Context(), input))
		assert.Equal(t, dialog.Failed, d.State())
		assert.Equal(t, "card number already issued", d.Error())
		assert.False(t, d.InputsDisabled())
		assert.Equal(t, 1, toasts.Count(dataaccess.VariantDestructive))

		fail.Store(false)
		require.NoError(t, d.Submit(t.Context(), input))
		assert.Equal(t, dialog.Closed, d.State())
		assert.EqualValues(t, 2, srv.calls.Load())
	})

	t.Run("ClosedDialogRejectsSubmit", func(t *testing.T) {
		store, srv, _ := setup(t, respond(http.StatusCreated, card.Card{}))
		d := dialog.IssueCard(store, 7)

		assert.ErrorIs(t, d.Submit(t.Context(), dialog.IssueCardInput{CardNumber: "X"}), dialog.ErrClosed)
		assert.Zero(t, srv.calls.Load())
	})

	t.Run("SecondSubmitWhileBusy", func(t *testing.T) {
		release := make(chan struct{})
		store, srv, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
			<-release
			respond(http.StatusCreated, card.Card{ID: 3, StudentID: 7})(w, r)
		})
		d := dialog.IssueCard(store, 7)
		d.Open()

		done := make(chan error, 1)
		go func() { done <- d.Submit(context.Background(), dialog.IssueCardInput{CardNumber: "A"}) }()

		require.Eventually(t, d.InputsDisabled, time.Second, time.Millisecond)
		assert.ErrorIs(t, d.Submit(t.Context(), dialog.IssueCardInput{CardNumber: "B"}), dialog.ErrBusy)

		d.Close()
		assert.Equal(t, dialog.Submitting, d.State(), "cannot close mid-submit")

		close(release)
		require.NoError(t, <-done)
		assert.EqualValues(t, 1, srv.calls.Load())
	})
}

func TestScheduleEvent(t *testing.T) {
	store, srv, _ := setup(t, respond(http.StatusCreated, map[string]any{"id": 1, "title": "Fair"}))
	d := dialog.ScheduleEvent(store)
	d.Open()

	start := time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	assert.ErrorIs(t, d.Submit(t.Context(), dialog.ScheduleEventInput{StartsAt: start}), dialog.ErrValidation)
	assert.Contains(t, d.FieldErrors(), "title")

	assert.ErrorIs(t, d.Submit(t.Context(), dialog.ScheduleEventInput{Title: "Fair", StartsAt: start, EndsAt: &before}), dialog.ErrValidation)
	assert.Contains(t, d.FieldErrors(), "endsAt")
	assert.Zero(t, srv.calls.Load())

	require.NoError(t, d.Submit(t.Context(), dialog.ScheduleEventInput{Title: "Fair", StartsAt: start, EventType: "fair"}))
	assert.Equal(t, dialog.Closed, d.State())
}

func TestAssignAgent(t *testing.T) {
	type request struct {
		method, path string
		patch        student.Patch
	}
	received := make(chan request, 1)
	store, _, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		req := request{method: r.Method, path: r.URL.Path}
		json.NewDecoder(r.Body).Decode(&req.patch)
		received <- req
		respond(http.StatusOK, student.Student{ID: 4})(w, r)
	})
	d := dialog.AssignAgent(store, 4)
	d.Open()

	assert.ErrorIs(t, d.Submit(t.Context(), dialog.AssignAgentInput{}), dialog.ErrValidation)

	require.NoError(t, d.Submit(t.Context(), dialog.AssignAgentInput{Agent: "Global Ed Partners"}))
	req := <-received
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, "/api/students/4", req.path)
	require.NotNil(t, req.patch.Agent)
	assert.Equal(t, "Global Ed Partners", *req.patch.Agent)
	assert.Nil(t, req.patch.Stage)
}

func TestImportStudents(t *testing.T) {
	partition := student.ImportResult{Total: 10, Imported: 8, Skipped: 2, Failed: 0}
	store, srv, _ := setup(t, respond(http.StatusOK, partition))
	d := dialog.ImportStudents(store)
	d.Open()

	assert.ErrorIs(t, d.Submit(t.Context(), dialog.ImportStudentsInput{Filename: "students.csv"}), dialog.ErrValidation)
	assert.Zero(t, srv.calls.Load())
	assert.Nil(t, d.Result())

	require.NoError(t, d.Submit(t.Context(), dialog.ImportStudentsInput{
		Filename: "students.csv",
		File:     strings.NewReader("firstName,lastName,email\n"),
	}))
	require.NotNil(t, d.Result())
	assert.Equal(t, partition, *d.Result())
}
