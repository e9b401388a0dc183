package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agency-service/internal/events"

	"github.com/nats-io/nats.go"
)

// Producer publishes JSON payloads to NATS. Student messages go to the
// configured subject; domain events go to <prefix>.<event type>.
type Producer struct {
	conn          *nats.Conn
	subject       string
	subjectPrefix string
	logger        *slog.Logger
}

func NewProducer(url, subject, subjectPrefix string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url, nats.Name("agency-service"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject, "event_prefix", subjectPrefix)

	return &Producer{
		conn:          nc,
		subject:       subject,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}, nil
}

func (p *Producer) SendMessage(ctx context.Context, value interface{}) error {
	return p.publish(ctx, p.subject, value)
}

func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	return p.publish(ctx, p.subjectPrefix+"."+event.Type, event)
}

func (p *Producer) publish(ctx context.Context, subject string, value interface{}) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal message", "error", err)
		return err
	}

	if err := p.conn.Publish(subject, valueBytes); err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "subject", subject, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "message sent to NATS", "subject", subject)
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Drain()
}
