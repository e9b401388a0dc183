package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agency-service/internal/events"
	"agency-service/internal/metrics"

	"github.com/IBM/sarama"
)

const consumerGroup = "agency-service-activity"

// Consumer reads domain events from the events topic as one consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler *ConsumerGroupHandler
	logger  *slog.Logger
}

func NewConsumer(brokers []string, topic string, handle events.Handler, logger *slog.Logger, metrics *metrics.Metrics) (*Consumer, error) {
	config := sarama.NewConfig()
	config.ClientID = "agency-service"
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, consumerGroup, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	return &Consumer{
		group: group,
		topic: topic,
		handler: &ConsumerGroupHandler{
			Handle:  handle,
			Logger:  logger,
			Metrics: metrics,
		},
		logger: logger,
	}, nil
}

// Start consumes until ctx is done. Consume returns on every rebalance, so
// it runs in a loop.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("kafka consumer started", "topic", c.topic, "group", consumerGroup)
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("error consuming events", "error", err)
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// ConsumerGroupHandler implements sarama.ConsumerGroupHandler.
type ConsumerGroupHandler struct {
	Handle  events.Handler
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks every message, including ones that fail, so a bad
// payload is never redelivered forever.
func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for msg := range claim.Messages() {
		event, err := events.Decode(msg.Value)
		if err != nil {
			h.Logger.Warn("dropping kafka message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			h.Metrics.RecordEventConsumed(ctx, "kafka", err)
			session.MarkMessage(msg, "")
			continue
		}

		err = h.Handle(ctx, event)
		h.Metrics.RecordEventConsumed(ctx, "kafka", err)
		if err != nil {
			h.Logger.Error("failed to handle event", "type", event.Type, "offset", msg.Offset, "error", err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
