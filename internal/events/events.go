// Package events carries domain notifications emitted after successful writes.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	StudentCreated          = "student.created"
	StudentUpdated          = "student.updated"
	StudentDeleted          = "student.deleted"
	StudentsImported        = "student.imported"
	UniversityCreated       = "university.created"
	UniversityUpdated       = "university.updated"
	UniversityDeleted       = "university.deleted"
	ProgramCreated          = "program.created"
	AgentCreated            = "agent.created"
	AgentUpdated            = "agent.updated"
	AgentDeleted            = "agent.deleted"
	ApplicationCreated      = "application.created"
	ApplicationStageChanged = "application.stage_changed"
	ApplicationDeleted      = "application.deleted"
	CardIssued              = "card.issued"
	EventScheduled          = "event.scheduled"
)

type Event struct {
	Type       string    `json:"type"`
	Entity     string    `json:"entity"`
	EntityID   int       `json:"entityId"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New stamps an event with the current time.
func New(eventType, entity string, id int, data any) Event {
	return Event{
		Type:       eventType,
		Entity:     entity,
		EntityID:   id,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Key identifies the entity, used as the Kafka partition key.
func (e Event) Key() string {
	return e.Entity
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Handler processes one event read back from a broker.
type Handler func(ctx context.Context, event Event) error

var ErrMalformedEvent = errors.New("malformed event")

// Decode parses a broker payload. Payloads without a type are rejected.
func Decode(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	return event, nil
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Emitter publishes best effort: a failed publish is logged and never fails
// the write that produced it.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewEmitter(publisher Publisher, logger *slog.Logger) *Emitter {
	if publisher == nil {
		publisher = Noop{}
	}
	return &Emitter{publisher: publisher, logger: logger}
}

func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to publish domain event",
			"type", event.Type,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

// Recorder keeps published events in memory for tests.
type Recorder struct {
	Events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
