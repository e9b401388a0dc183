package activity

import (
	"time"

	"agency-service/internal/events"

	"github.com/uptrace/bun"
)

// Entry is one domain event as it came back from the broker.
type Entry struct {
	bun.BaseModel `bun:"table:activity_log,alias:act"`

	ID         int64          `bun:"id,pk,autoincrement" json:"id"`
	Type       string         `bun:"type,notnull" json:"type"`
	Entity     string         `bun:"entity,notnull" json:"entity"`
	EntityID   int            `bun:"entity_id,notnull" json:"entityId"`
	Data       map[string]any `bun:"data,type:jsonb" json:"data,omitempty"`
	OccurredAt time.Time      `bun:"occurred_at,notnull" json:"occurredAt"`
	ReceivedAt time.Time      `bun:"received_at,notnull,default:current_timestamp" json:"receivedAt"`
}

func entryFromEvent(e events.Event, received time.Time) *Entry {
	entry := &Entry{
		Type:       e.Type,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		OccurredAt: e.OccurredAt,
		ReceivedAt: received,
	}
	if data, ok := e.Data.(map[string]any); ok {
		entry.Data = data
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = received
	}
	return entry
}

// Query narrows GET /api/activity.
type Query struct {
	Entity string
	Limit  int
}
