package university

import (
	"fmt"
	"time"

	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

type University struct {
	bun.BaseModel `bun:"table:universities,alias:u"`

	ID             int                   `bun:"id,pk,autoincrement" json:"id"`
	Name           string                `bun:"name,notnull" json:"name" validate:"required"`
	Country        string                `bun:"country,notnull" json:"country" validate:"required"`
	City           string                `bun:"city" json:"city,omitempty"`
	Website        string                `bun:"website" json:"website,omitempty" validate:"omitempty,url"`
	Tier           schema.UniversityTier `bun:"tier,notnull,default:'tier2'" json:"tier" validate:"university_tier"`
	Status         schema.PartnerStatus  `bun:"status,notnull,default:'pending'" json:"status" validate:"partner_status"`
	AgreementStart *time.Time            `bun:"agreement_start" json:"agreementStart,omitempty"`
	AgreementEnd   *time.Time            `bun:"agreement_end" json:"agreementEnd,omitempty"`
	AgreementType  string                `bun:"agreement_type" json:"agreementType,omitempty"`
	CommissionRate float64               `bun:"commission_rate,notnull,default:0" json:"commissionRate" validate:"gte=0,lte=100"`
	CreatedAt      time.Time             `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time             `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`

	Programs []*Program `bun:"rel:has-many,join:id=university_id" json:"programs,omitempty"`
}

// checkAgreement rejects an agreement that ends before it starts.
func (u *University) checkAgreement() error {
	if u.AgreementStart != nil && u.AgreementEnd != nil && u.AgreementEnd.Before(*u.AgreementStart) {
		return fmt.Errorf("%w: agreementEnd is before agreementStart", ErrInvalidInput)
	}
	return nil
}

type Program struct {
	bun.BaseModel `bun:"table:programs,alias:p"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name" validate:"required"`
	UniversityID int       `bun:"university_id,notnull" json:"universityId" validate:"required,gt=0"`
	Level        string    `bun:"level" json:"level,omitempty" validate:"omitempty,oneof=foundation bachelor master phd diploma"`
	Duration     string    `bun:"duration" json:"duration,omitempty"`
	TuitionFee   float64   `bun:"tuition_fee,notnull,default:0" json:"tuitionFee" validate:"gte=0"`
	Intake       string    `bun:"intake" json:"intake,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
