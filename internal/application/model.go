package application

import (
	"time"

	"agency-service/internal/agent"
	"agency-service/internal/schema"
	"agency-service/internal/student"
	"agency-service/internal/university"

	"github.com/uptrace/bun"
)

type Application struct {
	bun.BaseModel `bun:"table:applications,alias:app"`

	ID             int                      `bun:"id,pk,autoincrement" json:"id"`
	StudentID      int                      `bun:"student_id,notnull" json:"studentId" validate:"required,gt=0"`
	UniversityID   int                      `bun:"university_id,notnull" json:"universityId" validate:"required,gt=0"`
	ProgramID      int                      `bun:"program_id,notnull" json:"programId" validate:"required,gt=0"`
	AgentID        *int                     `bun:"agent_id" json:"agentId,omitempty" validate:"omitempty,gt=0"`
	Stage          schema.ApplicationStage  `bun:"stage,notnull,default:'draft'" json:"stage" validate:"application_stage"`
	Status         schema.ApplicationStatus `bun:"status,notnull,default:'pending'" json:"status" validate:"application_status"`
	Intake         string                   `bun:"intake" json:"intake,omitempty"`
	SubmittedAt    *time.Time               `bun:"submitted_at" json:"submittedAt,omitempty"`
	DecisionAt     *time.Time               `bun:"decision_at" json:"decisionAt,omitempty"`
	IsHighPriority bool                     `bun:"is_high_priority,notnull,default:false" json:"isHighPriority"`
	Notes          string                   `bun:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time                `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time                `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`

	Student    *student.Student       `bun:"rel:belongs-to,join:student_id=id" json:"student,omitempty" validate:"-"`
	University *university.University `bun:"rel:belongs-to,join:university_id=id" json:"university,omitempty" validate:"-"`
	Program    *university.Program    `bun:"rel:belongs-to,join:program_id=id" json:"program,omitempty" validate:"-"`
	Agent      *agent.Agent           `bun:"rel:belongs-to,join:agent_id=id" json:"agent,omitempty" validate:"-"`
}

// Patch moves an application through the pipeline; nil fields are untouched.
type Patch struct {
	Stage          *schema.ApplicationStage  `json:"stage,omitempty" validate:"omitempty,application_stage"`
	Status         *schema.ApplicationStatus `json:"status,omitempty" validate:"omitempty,application_status"`
	Intake         *string                   `json:"intake,omitempty"`
	Notes          *string                   `json:"notes,omitempty"`
	IsHighPriority *bool                     `json:"isHighPriority,omitempty"`
	AgentID        *int                      `json:"agentId,omitempty" validate:"omitempty,gt=0"`
}

// ListFilter narrows GET /api/applications; zero values match everything.
type ListFilter struct {
	StudentID    int
	UniversityID int
	Stage        schema.ApplicationStage
}

// StageChange is the payload of application.stage_changed.
type StageChange struct {
	ApplicationID int                     `json:"applicationId"`
	StudentID     int                     `json:"studentId"`
	From          schema.ApplicationStage `json:"from"`
	To            schema.ApplicationStage `json:"to"`
}
