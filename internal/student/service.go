package student

import (
	"context"
	"errors"
	"time"

	"agency-service/internal/events"
	"agency-service/internal/schema"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmailExists     = errors.New("student with this email already exists")
)

type Service interface {
	CreateStudent(ctx context.Context, student *Student) (*Student, error)
	GetAllStudents(ctx context.Context, filter, query string) ([]Student, error)
	GetStudentByID(ctx context.Context, id int) (*Student, error)
	UpdateStudent(ctx context.Context, student *Student) (*Student, error)
	PatchStudent(ctx context.Context, id int, patch Patch) (*Student, error)
	DeleteStudent(ctx context.Context, id int) error
	StageCounts(ctx context.Context) (StageCounts, error)
	ImportStudents(ctx context.Context, rows []ImportRow) (*ImportResult, error)
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

func applyDefaults(s *Student) {
	if s.Status == "" {
		s.Status = schema.StudentActive
	}
	if s.Stage == "" {
		s.Stage = schema.StageInquiry
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

func (s *service) CreateStudent(ctx context.Context, student *Student) (*Student, error) {
	student.ID = 0
	applyDefaults(student)

	created, err := s.repo.Create(ctx, student)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.StudentCreated, "student", created.ID, created))
	return created, nil
}

func (s *service) GetAllStudents(ctx context.Context, filter, query string) ([]Student, error) {
	students, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Search(Filter(students, filter), query), nil
}

func (s *service) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStudent(ctx context.Context, student *Student) (*Student, error) {
	if student.ID <= 0 {
		return nil, ErrInvalidInput
	}
	if student.Status == "" {
		student.Status = schema.StudentActive
	}
	if student.Stage == "" {
		student.Stage = schema.StageInquiry
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, events.New(events.StudentUpdated, "student", updated.ID, updated))
	return updated, nil
}

func (s *service) PatchStudent(ctx context.Context, id int, patch Patch) (*Student, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := patch.Apply(current)
	if len(columns) == 0 {
		return current, nil
	}

	if err := s.repo.UpdateColumns(ctx, current, columns); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.StudentUpdated, "student", current.ID, patch))
	return current, nil
}

func (s *service) DeleteStudent(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, events.New(events.StudentDeleted, "student", id, nil))
	return nil
}

func (s *service) StageCounts(ctx context.Context) (StageCounts, error) {
	return s.repo.StageCounts(ctx)
}
