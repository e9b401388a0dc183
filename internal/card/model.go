package card

import (
	"time"

	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

// Card is a student ID card issued by the agency.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID         int               `bun:"id,pk,autoincrement" json:"id"`
	StudentID  int               `bun:"student_id,notnull" json:"studentId" validate:"required,gt=0"`
	CardNumber string            `bun:"card_number,unique,notnull" json:"cardNumber" validate:"required,max=64"`
	CardType   string            `bun:"card_type,notnull,default:'student'" json:"cardType" validate:"omitempty,oneof=student isic travel"`
	IssuedAt   time.Time         `bun:"issued_at,notnull,default:current_timestamp" json:"issuedAt"`
	ExpiresAt  *time.Time        `bun:"expires_at" json:"expiresAt,omitempty"`
	Status     schema.CardStatus `bun:"status,notnull,default:'active'" json:"status" validate:"card_status"`
}
