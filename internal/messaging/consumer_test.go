package messaging_test

import (
	"context"
	"testing"
	"time"

	"agency-service/internal/events"
	"agency-service/internal/logger"
	"agency-service/internal/messaging"
	"agency-service/internal/metrics"
	"agency-service/internal/testing/testnats"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumer(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)

	received := make(chan events.Event, 4)
	consumer, err := messaging.NewConsumer(natsContainer.URL, "activity.test.>",
		func(_ context.Context, e events.Event) error {
			received <- e
			return nil
		},
		logger.Discard(), metrics.NewMock())
	require.NoError(t, err)
	t.Cleanup(func() { consumer.Close() })

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	require.NoError(t, consumer.HealthCheck())

	producer, err := messaging.NewProducer(natsContainer.URL, "unused", "activity.test", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { producer.Close() })

	raw, err := nats.Connect(natsContainer.URL)
	require.NoError(t, err)
	t.Cleanup(raw.Close)

	// the subscription is registered asynchronously; publish until it lands
	event := events.New(events.StudentCreated, "student", 11, nil)
	var got events.Event
	require.Eventually(t, func() bool {
		if raw.Publish("activity.test.junk", []byte("not json")) != nil {
			return false
		}
		if producer.Publish(context.Background(), event) != nil {
			return false
		}
		select {
		case got = <-received:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, events.StudentCreated, got.Type)
	assert.Equal(t, 11, got.EntityID)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
