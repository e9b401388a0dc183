package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"agency-service/internal/events"
	"agency-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		data, err := json.Marshal(events.New(events.ApplicationStageChanged, "application", 8, map[string]string{"to": "offer"}))
		require.NoError(t, err)

		event, err := events.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, events.ApplicationStageChanged, event.Type)
		assert.Equal(t, 8, event.EntityID)
		assert.Equal(t, map[string]any{"to": "offer"}, event.Data)
	})

	t.Run("Rejects", func(t *testing.T) {
		for _, payload := range []string{"", "not json", `{"entity":"student"}`} {
			_, err := events.Decode([]byte(payload))
			assert.ErrorIs(t, err, events.ErrMalformedEvent, "payload %q", payload)
		}
	})
}

func TestEmitter(t *testing.T) {
	t.Run("Publishes", func(t *testing.T) {
		rec := &events.Recorder{}
		events.NewEmitter(rec, logger.Discard()).Emit(context.Background(), events.New(events.StudentCreated, "student", 1, nil))
		assert.Equal(t, []string{events.StudentCreated}, rec.Types())
	})

	t.Run("PublishFailureIsSwallowed", func(t *testing.T) {
		rec := &events.Recorder{Err: errors.New("broker down")}
		assert.NotPanics(t, func() {
			events.NewEmitter(rec, logger.Discard()).Emit(context.Background(), events.New(events.StudentCreated, "student", 1, nil))
		})
		assert.Empty(t, rec.Events)
	})

	t.Run("NilPublisherAndNilEmitter", func(t *testing.T) {
		var nilEmitter *events.Emitter
		assert.NotPanics(t, func() {
			events.NewEmitter(nil, logger.Discard()).Emit(context.Background(), events.Event{Type: "x"})
			nilEmitter.Emit(context.Background(), events.Event{Type: "x"})
		})
	})
}
