package event

import (
	"time"

	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

// Event is a scheduled fair, webinar, meeting or deadline.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          int              `bun:"id,pk,autoincrement" json:"id"`
	Title       string           `bun:"title,notnull" json:"title" validate:"required,max=200"`
	Description string           `bun:"description" json:"description,omitempty"`
	EventType   schema.EventType `bun:"event_type,notnull,default:'meeting'" json:"eventType" validate:"event_type"`
	Location    string           `bun:"location" json:"location,omitempty"`
	StartsAt    time.Time        `bun:"starts_at,notnull" json:"startsAt" validate:"required"`
	EndsAt      time.Time        `bun:"ends_at,notnull" json:"endsAt" validate:"omitempty,gtefield=StartsAt"`
	CreatedAt   time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
