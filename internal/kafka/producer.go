package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agency-service/internal/events"

	"github.com/IBM/sarama"
)

// Producer writes domain events to a single topic keyed by entity, so all
// events for one entity type land on one partition in order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.ClientID = "agency-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return NewWithSyncProducer(producer, topic, logger), nil
}

// NewWithSyncProducer wraps an existing producer; tests pass sarama mocks.
func NewWithSyncProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(valueBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to kafka", "type", event.Type, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event sent to kafka",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
	)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
