package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agency-service/internal/events"
	"agency-service/internal/schema"
)

var ErrInvalidInput = errors.New("invalid input")

type Service interface {
	ScheduleEvent(ctx context.Context, event *Event) (*Event, error)
	GetEvents(ctx context.Context, upcomingOnly bool) ([]Event, error)
}

type service struct {
	repo    Repository
	emitter *events.Emitter
	now     func() time.Time
}

func NewService(repo Repository, emitter *events.Emitter) Service {
	return &service{
		repo:    repo,
		emitter: emitter,
		now:     time.Now,
	}
}

func (s *service) ScheduleEvent(ctx context.Context, event *Event) (*Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if event.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: startsAt is required", ErrInvalidInput)
	}
	if event.EndsAt.IsZero() {
		event.EndsAt = event.StartsAt
	}
	if event.EndsAt.Before(event.StartsAt) {
		return nil, fmt.Errorf("%w: endsAt is before startsAt", ErrInvalidInput)
	}

	event.ID = 0
	if event.EventType == "" {
		event.EventType = schema.EventMeeting
	}
	event.CreatedAt = s.now().UTC()

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.EventScheduled, "event", created.ID, created))
	return created, nil
}

func (s *service) GetEvents(ctx context.Context, upcomingOnly bool) ([]Event, error) {
	var from time.Time
	if upcomingOnly {
		from = s.now().UTC()
	}
	return s.repo.List(ctx, from)
}
