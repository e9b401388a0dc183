package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"agency-service/internal/events"
	"agency-service/internal/kafka"
	"agency-service/internal/logger"
	"agency-service/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerGroupHandler(t *testing.T) {
	var handled []events.Event
	handler := &kafka.ConsumerGroupHandler{
		Handle: func(_ context.Context, e events.Event) error {
			handled = append(handled, e)
			if e.EntityID == 99 {
				return errors.New("database down")
			}
			return nil
		},
		Logger:  logger.Discard(),
		Metrics: metrics.NewMock(),
	}

	encode := func(e events.Event) []byte {
		b, err := json.Marshal(e)
		require.NoError(t, err)
		return b
	}

	t.Run("HandlesAndMarks", func(t *testing.T) {
		handled = nil
		session := newMockSession()
		claim := &mockConsumerGroupClaim{messages: []*sarama.ConsumerMessage{
			{Topic: "agency.events", Offset: 0, Value: encode(events.New(events.StudentCreated, "student", 1, nil))},
			{Topic: "agency.events", Offset: 1, Value: encode(events.New(events.CardIssued, "card", 2, nil))},
		}}

		require.NoError(t, handler.ConsumeClaim(session, claim))

		require.Len(t, handled, 2)
		assert.Equal(t, events.StudentCreated, handled[0].Type)
		assert.Equal(t, events.CardIssued, handled[1].Type)
		assert.Len(t, session.MarkedMessages, 2)
	})

	t.Run("MalformedPayloadIsSkippedButMarked", func(t *testing.T) {
		handled = nil
		session := newMockSession()
		claim := &mockConsumerGroupClaim{messages: []*sarama.ConsumerMessage{
			{Offset: 0, Value: []byte("not json")},
			{Offset: 1, Value: []byte(`{"entity":"student"}`)},
			{Offset: 2, Value: encode(events.New(events.AgentCreated, "agent", 5, nil))},
		}}

		require.NoError(t, handler.ConsumeClaim(session, claim))

		require.Len(t, handled, 1)
		assert.Equal(t, 5, handled[0].EntityID)
		assert.Len(t, session.MarkedMessages, 3)
	})

	t.Run("HandlerErrorStillMarks", func(t *testing.T) {
		handled = nil
		session := newMockSession()
		claim := &mockConsumerGroupClaim{messages: []*sarama.ConsumerMessage{
			{Offset: 7, Value: encode(events.New(events.StudentDeleted, "student", 99, nil))},
		}}

		require.NoError(t, handler.ConsumeClaim(session, claim))
		assert.True(t, session.MarkedMessages["0:7"])
	})
}

type mockConsumerGroupSession struct {
	MarkedMessages map[string]bool
}

func newMockSession() *mockConsumerGroupSession {
	return &mockConsumerGroupSession{MarkedMessages: map[string]bool{}}
}

func (m *mockConsumerGroupSession) Claims() map[string][]int32 { return nil }
func (m *mockConsumerGroupSession) MemberID() string           { return "test-member" }
func (m *mockConsumerGroupSession) GenerationID() int32        { return 1 }
func (m *mockConsumerGroupSession) MarkOffset(string, int32, int64, string) {}
func (m *mockConsumerGroupSession) ResetOffset(string, int32, int64, string) {}
func (m *mockConsumerGroupSession) Commit() {}
func (m *mockConsumerGroupSession) Context() context.Context { return context.Background() }

func (m *mockConsumerGroupSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	m.MarkedMessages[fmt.Sprintf("%d:%d", msg.Partition, msg.Offset)] = true
}

type mockConsumerGroupClaim struct {
	messages []*sarama.ConsumerMessage
}

func (m *mockConsumerGroupClaim) Topic() string              { return "agency.events" }
func (m *mockConsumerGroupClaim) Partition() int32           { return 0 }
func (m *mockConsumerGroupClaim) InitialOffset() int64       { return 0 }
func (m *mockConsumerGroupClaim) HighWaterMarkOffset() int64 { return int64(len(m.messages)) }

func (m *mockConsumerGroupClaim) Messages() <-chan *sarama.ConsumerMessage {
	ch := make(chan *sarama.ConsumerMessage, len(m.messages))
	for _, msg := range m.messages {
		ch <- msg
	}
	close(ch)
	return ch
}
