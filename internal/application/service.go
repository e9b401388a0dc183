package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agency-service/internal/agent"
	"agency-service/internal/events"
	"agency-service/internal/schema"
	"agency-service/internal/student"
	"agency-service/internal/university"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidInput        = errors.New("invalid input")
)

// The lookups below are satisfied by the student, university and agent
// services.

type StudentFinder interface {
	GetStudentByID(ctx context.Context, id int) (*student.Student, error)
}

type UniversityFinder interface {
	GetUniversityByID(ctx context.Context, id int) (*university.University, error)
	GetProgram(ctx context.Context, id int) (*university.Program, error)
}

type AgentFinder interface {
	GetAgentByID(ctx context.Context, id int) (*agent.Agent, error)
}

type Service interface {
	CreateApplication(ctx context.Context, app *Application) (*Application, error)
	GetApplications(ctx context.Context, filter ListFilter) ([]Application, error)
	GetApplicationByID(ctx context.Context, id int) (*Application, error)
	PatchApplication(ctx context.Context, id int, patch Patch) (*Application, error)
	DeleteApplication(ctx context.Context, id int) error
}

type service struct {
	repo         Repository
	students     StudentFinder
	universities UniversityFinder
	agents       AgentFinder
	emitter      *events.Emitter
}

func NewService(repo Repository, students StudentFinder, universities UniversityFinder, agents AgentFinder, emitter *events.Emitter) Service {
	return &service{
		repo:         repo,
		students:     students,
		universities: universities,
		agents:       agents,
		emitter:      emitter,
	}
}

// checkReferences makes sure every foreign key resolves and that the
// program is offered by the chosen university.
func (s *service) checkReferences(ctx context.Context, app *Application) error {
	if _, err := s.students.GetStudentByID(ctx, app.StudentID); err != nil {
		return missing(err, student.ErrStudentNotFound, "student", app.StudentID)
	}
	if _, err := s.universities.GetUniversityByID(ctx, app.UniversityID); err != nil {
		return missing(err, university.ErrUniversityNotFound, "university", app.UniversityID)
	}
	program, err := s.universities.GetProgram(ctx, app.ProgramID)
	if err != nil {
		return missing(err, university.ErrProgramNotFound, "program", app.ProgramID)
	}
	if program.UniversityID != app.UniversityID {
		return fmt.Errorf("%w: program %d is not offered by university %d", ErrInvalidInput, app.ProgramID, app.UniversityID)
	}
	if app.AgentID != nil {
		if err := s.checkAgent(ctx, *app.AgentID); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) checkAgent(ctx context.Context, id int) error {
	if _, err := s.agents.GetAgentByID(ctx, id); err != nil {
		return missing(err, agent.ErrAgentNotFound, "agent", id)
	}
	return nil
}

func missing(err, notFound error, entity string, id int) error {
	if errors.Is(err, notFound) {
		return fmt.Errorf("%w: %s %d does not exist", ErrInvalidInput, entity, id)
	}
	return err
}

func (s *service) CreateApplication(ctx context.Context, app *Application) (*Application, error) {
	if err := s.checkReferences(ctx, app); err != nil {
		return nil, err
	}

	app.ID = 0
	app.Student, app.University, app.Program, app.Agent = nil, nil, nil, nil
	if app.Stage == "" {
		app.Stage = schema.AppDraft
	}
	if app.Status == "" {
		app.Status = schema.AppPending
	}
	now := time.Now().UTC()
	if app.Stage != schema.AppDraft && app.SubmittedAt == nil {
		app.SubmittedAt = &now
	}
	app.CreatedAt = now
	app.UpdatedAt = now

	created, err := s.repo.Create(ctx, app)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.ApplicationCreated, "application", created.ID, created))
	return created, nil
}

func (s *service) GetApplications(ctx context.Context, filter ListFilter) ([]Application, error) {
	return s.repo.GetAll(ctx, filter)
}

func (s *service) GetApplicationByID(ctx context.Context, id int) (*Application, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) PatchApplication(ctx context.Context, id int, patch Patch) (*Application, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.AgentID != nil {
		if err := s.checkAgent(ctx, *patch.AgentID); err != nil {
			return nil, err
		}
	}

	from := app.Stage
	columns := apply(app, patch, time.Now().UTC())
	if len(columns) == 0 {
		return app, nil
	}

	if err := s.repo.UpdateColumns(ctx, app, columns); err != nil {
		return nil, err
	}

	if app.Stage != from {
		s.emitter.Emit(ctx, events.New(events.ApplicationStageChanged, "application", app.ID, StageChange{
			ApplicationID: app.ID,
			StudentID:     app.StudentID,
			From:          from,
			To:            app.Stage,
		}))
	}
	return s.repo.GetByID(ctx, id)
}

// apply copies the patch onto app and stamps submittedAt and decisionAt the
// first time the application leaves draft or gets a final status.
func apply(app *Application, patch Patch, now time.Time) []string {
	var cols []string

	if patch.Stage != nil && *patch.Stage != app.Stage {
		app.Stage = *patch.Stage
		cols = append(cols, "stage")
		if app.Stage != schema.AppDraft && app.SubmittedAt == nil {
			app.SubmittedAt = &now
			cols = append(cols, "submitted_at")
		}
	}
	if patch.Status != nil && *patch.Status != app.Status {
		app.Status = *patch.Status
		cols = append(cols, "status")
		if app.Status != schema.AppPending && app.DecisionAt == nil {
			app.DecisionAt = &now
			cols = append(cols, "decision_at")
		}
	}
	if patch.Intake != nil {
		app.Intake = *patch.Intake
		cols = append(cols, "intake")
	}
	if patch.Notes != nil {
		app.Notes = *patch.Notes
		cols = append(cols, "notes")
	}
	if patch.IsHighPriority != nil {
		app.IsHighPriority = *patch.IsHighPriority
		cols = append(cols, "is_high_priority")
	}
	if patch.AgentID != nil {
		app.AgentID = patch.AgentID
		app.Agent = nil
		cols = append(cols, "agent_id")
	}
	return cols
}

func (s *service) DeleteApplication(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, events.New(events.ApplicationDeleted, "application", id, nil))
	return nil
}
