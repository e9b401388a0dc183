package message

import (
	"time"

	"github.com/uptrace/bun"
)

// Message is a note sent to a student through the message bus. Either
// StudentID or Email identifies the recipient.
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:msg"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	StudentID *int      `bun:"student_id" json:"studentId,omitempty" validate:"omitempty,gt=0"`
	Email     string    `bun:"email,notnull" json:"email" validate:"omitempty,email"`
	Subject   string    `bun:"subject" json:"subject" validate:"max=200"`
	Body      string    `bun:"body,notnull" json:"body" validate:"required,max=5000"`
	Sender    string    `bun:"sender" json:"sender"`
	SentAt    time.Time `bun:"sent_at,notnull,default:current_timestamp" json:"sentAt"`
}
