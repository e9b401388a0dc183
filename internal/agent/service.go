package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"agency-service/internal/events"
	"agency-service/internal/schema"
)

var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmailExists   = errors.New("agent with this email already exists")
)

type Service interface {
	CreateAgent(ctx context.Context, agent *Agent) (*Agent, error)
	GetAllAgents(ctx context.Context) ([]Agent, error)
	GetAgentByID(ctx context.Context, id int) (*Agent, error)
	UpdateAgent(ctx context.Context, agent *Agent) (*Agent, error)
	DeleteAgent(ctx context.Context, id int) error
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

func normalize(a *Agent) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if a.Status == "" {
		a.Status = schema.PartnerActive
	}
}

func (s *service) CreateAgent(ctx context.Context, agent *Agent) (*Agent, error) {
	agent.ID = 0
	normalize(agent)
	agent.CreatedAt = time.Now().UTC()

	created, err := s.repo.Create(ctx, agent)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.AgentCreated, "agent", created.ID, created))
	return created, nil
}

func (s *service) GetAllAgents(ctx context.Context) ([]Agent, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetAgentByID(ctx context.Context, id int) (*Agent, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateAgent(ctx context.Context, agent *Agent) (*Agent, error) {
	if agent.ID <= 0 {
		return nil, ErrInvalidInput
	}
	normalize(agent)

	if err := s.repo.Update(ctx, agent); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, events.New(events.AgentUpdated, "agent", updated.ID, updated))
	return updated, nil
}

func (s *service) DeleteAgent(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, events.New(events.AgentDeleted, "agent", id, nil))
	return nil
}
