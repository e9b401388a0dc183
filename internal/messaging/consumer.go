package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"agency-service/internal/events"
	"agency-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Consumer reads domain events back from NATS and hands each to a handler.
// The subject is usually a wildcard such as "agency.events.>".
type Consumer struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	handle  events.Handler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewConsumer(url, subject string, handle events.Handler, logger *slog.Logger, metrics *metrics.Metrics) (*Consumer, error) {
	nc, err := nats.Connect(url, nats.Name("agency-service-activity"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Consumer{
		conn:    nc,
		subject: subject,
		handle:  handle,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Start subscribes and blocks until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.conn.Subscribe(c.subject, func(msg *nats.Msg) {
		c.deliver(ctx, msg)
	})
	if err != nil {
		return err
	}
	if err := c.conn.Flush(); err != nil {
		sub.Unsubscribe()
		return err
	}

	c.sub = sub
	c.logger.Info("NATS consumer started", "subject", c.subject)

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) deliver(ctx context.Context, msg *nats.Msg) {
	event, err := events.Decode(msg.Data)
	if err != nil {
		c.logger.Warn("dropping NATS message", "subject", msg.Subject, "error", err)
		c.metrics.RecordEventConsumed(ctx, "nats", err)
		return
	}

	err = c.handle(context.WithoutCancel(ctx), event)
	c.metrics.RecordEventConsumed(ctx, "nats", err)
	if err != nil {
		c.logger.Error("failed to handle event", "type", event.Type, "error", err)
		return
	}
	c.logger.Debug("event consumed", "subject", msg.Subject, "type", event.Type)
}

func (c *Consumer) Close() error {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}

// HealthCheck verifies NATS connection is healthy
func (c *Consumer) HealthCheck() error {
	if c.conn == nil {
		return nats.ErrConnectionClosed
	}
	if !c.conn.IsConnected() {
		return nats.ErrDisconnected
	}
	return nil
}
