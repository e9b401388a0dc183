package agent

import (
	"time"

	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

type Agent struct {
	bun.BaseModel `bun:"table:agents,alias:a"`

	ID             int                  `bun:"id,pk,autoincrement" json:"id"`
	Name           string               `bun:"name,notnull" json:"name" validate:"required"`
	Company        string               `bun:"company" json:"company,omitempty"`
	Email          string               `bun:"email,unique,notnull" json:"email" validate:"required,email"`
	Phone          string               `bun:"phone" json:"phone,omitempty"`
	Status         schema.PartnerStatus `bun:"status,notnull,default:'active'" json:"status" validate:"partner_status"`
	Country        string               `bun:"country" json:"country,omitempty"`
	CommissionRate float64              `bun:"commission_rate,notnull,default:0" json:"commissionRate" validate:"gte=0,lte=100"`
	CreatedAt      time.Time            `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
