package university

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agency-service/internal/events"
	"agency-service/internal/schema"
)

var (
	ErrUniversityNotFound = errors.New("university not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrInvalidInput       = errors.New("invalid input")
)

type Service interface {
	CreateUniversity(ctx context.Context, university *University) (*University, error)
	GetAllUniversities(ctx context.Context) ([]University, error)
	GetUniversityByID(ctx context.Context, id int) (*University, error)
	UpdateUniversity(ctx context.Context, university *University) (*University, error)
	DeleteUniversity(ctx context.Context, id int) error
	CreateProgram(ctx context.Context, program *Program) (*Program, error)
	GetProgram(ctx context.Context, id int) (*Program, error)
	GetProgramsByUniversity(ctx context.Context, universityID int) ([]Program, error)
}

type service struct {
	repo    Repository
	emitter *events.Emitter
}

func NewService(repo Repository, emitter *events.Emitter) Service {
	return &service{
		repo:    repo,
		emitter: emitter,
	}
}

func applyDefaults(u *University) {
	if u.Tier == "" {
		u.Tier = schema.Tier2
	}
	if u.Status == "" {
		u.Status = schema.PartnerPending
	}
}

func (s *service) CreateUniversity(ctx context.Context, university *University) (*University, error) {
	if err := university.checkAgreement(); err != nil {
		return nil, err
	}
	university.ID = 0
	university.Programs = nil
	applyDefaults(university)
	now := time.Now().UTC()
	university.CreatedAt = now
	university.UpdatedAt = now

	created, err := s.repo.Create(ctx, university)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.UniversityCreated, "university", created.ID, created))
	return created, nil
}

func (s *service) GetAllUniversities(ctx context.Context) ([]University, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetUniversityByID(ctx context.Context, id int) (*University, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateUniversity(ctx context.Context, university *University) (*University, error) {
	if university.ID <= 0 {
		return nil, ErrInvalidInput
	}
	if err := university.checkAgreement(); err != nil {
		return nil, err
	}
	university.Programs = nil
	applyDefaults(university)

	if err := s.repo.Update(ctx, university); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, university.ID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, events.New(events.UniversityUpdated, "university", updated.ID, updated))
	return updated, nil
}

func (s *service) DeleteUniversity(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, events.New(events.UniversityDeleted, "university", id, nil))
	return nil
}

func (s *service) CreateProgram(ctx context.Context, program *Program) (*Program, error) {
	if _, err := s.repo.GetByID(ctx, program.UniversityID); err != nil {
		if errors.Is(err, ErrUniversityNotFound) {
			return nil, fmt.Errorf("%w: university %d does not exist", ErrInvalidInput, program.UniversityID)
		}
		return nil, err
	}

	program.ID = 0
	program.CreatedAt = time.Now().UTC()
	created, err := s.repo.CreateProgram(ctx, program)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.ProgramCreated, "program", created.ID, created))
	return created, nil
}

func (s *service) GetProgram(ctx context.Context, id int) (*Program, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetProgram(ctx, id)
}

// GetProgramsByUniversity returns ErrUniversityNotFound for an unknown
// university rather than an empty list.
func (s *service) GetProgramsByUniversity(ctx context.Context, universityID int) ([]Program, error) {
	if universityID <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, universityID); err != nil {
		return nil, err
	}
	return s.repo.ProgramsByUniversity(ctx, universityID)
}
