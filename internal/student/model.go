package student

import (
	"time"

	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID             int                  `bun:"id,pk,autoincrement" json:"id"`
	FirstName      string               `bun:"first_name,notnull" json:"firstName" validate:"required"`
	LastName       string               `bun:"last_name,notnull" json:"lastName" validate:"required"`
	Email          string               `bun:"email,unique,notnull" json:"email" validate:"required,email"`
	Phone          string               `bun:"phone" json:"phone,omitempty"`
	Nationality    string               `bun:"nationality" json:"nationality,omitempty"`
	Status         schema.StudentStatus `bun:"status,notnull,default:'active'" json:"status" validate:"student_status"`
	Stage          schema.Stage         `bun:"stage,notnull,default:'inquiry'" json:"stage" validate:"stage"`
	Program        string               `bun:"program" json:"program,omitempty"`
	University     string               `bun:"university" json:"university,omitempty"`
	Agent          string               `bun:"agent" json:"agent,omitempty"`
	IsHighPriority bool                 `bun:"is_high_priority,notnull,default:false" json:"isHighPriority"`
	CreatedAt      time.Time            `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time            `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// FullName is what tables and search display.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	FirstName      *string               `json:"firstName,omitempty" validate:"omitempty,min=1"`
	LastName       *string               `json:"lastName,omitempty" validate:"omitempty,min=1"`
	Email          *string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string               `json:"phone,omitempty"`
	Nationality    *string               `json:"nationality,omitempty"`
	Status         *schema.StudentStatus `json:"status,omitempty" validate:"omitempty,student_status"`
	Stage          *schema.Stage         `json:"stage,omitempty" validate:"omitempty,stage"`
	Program        *string               `json:"program,omitempty"`
	University     *string               `json:"university,omitempty"`
	Agent          *string               `json:"agent,omitempty"`
	IsHighPriority *bool                 `json:"isHighPriority,omitempty"`
}

// Apply copies set fields onto s and returns the changed column names.
func (p Patch) Apply(s *Student) []string {
	var cols []string
	set := func(col string) { cols = append(cols, col) }

	if p.FirstName != nil {
		s.FirstName = *p.FirstName
		set("first_name")
	}
	if p.LastName != nil {
		s.LastName = *p.LastName
		set("last_name")
	}
	if p.Email != nil {
		s.Email = *p.Email
		set("email")
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
		set("phone")
	}
	if p.Nationality != nil {
		s.Nationality = *p.Nationality
		set("nationality")
	}
	if p.Status != nil {
		s.Status = *p.Status
		set("status")
	}
	if p.Stage != nil {
		s.Stage = *p.Stage
		set("stage")
	}
	if p.Program != nil {
		s.Program = *p.Program
		set("program")
	}
	if p.University != nil {
		s.University = *p.University
		set("university")
	}
	if p.Agent != nil {
		s.Agent = *p.Agent
		set("agent")
	}
	if p.IsHighPriority != nil {
		s.IsHighPriority = *p.IsHighPriority
		set("is_high_priority")
	}
	return cols
}

// StageCounts maps stage name to number of students in it.
type StageCounts map[schema.Stage]int

// ImportResult is the partition returned by POST /api/students/import.
type ImportResult struct {
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
}

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
