package activity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"agency-service/internal/events"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidLimit = errors.New("limit must be between 1 and 100")

type Service interface {
	// Record stores an event delivered by a broker consumer.
	Record(ctx context.Context, event events.Event) error
	Recent(ctx context.Context, q Query) ([]Entry, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) Record(ctx context.Context, event events.Event) error {
	entry := entryFromEvent(event, s.now().UTC())
	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "activity recorded", "type", entry.Type, "entity_id", entry.EntityID)
	return nil
}

// Recent lists the newest entries first. A zero limit means DefaultLimit.
func (s *service) Recent(ctx context.Context, q Query) ([]Entry, error) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 0 || q.Limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	return s.repo.Recent(ctx, q)
}
