package event

import (
	"context"
	"time"

	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	// List returns events ordered by start; a non-zero from hides events that
	// ended before it.
	List(ctx context.Context, from time.Time) ([]Event, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, event *Event) (*Event, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(event).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "events", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) List(ctx context.Context, from time.Time) ([]Event, error) {
	start := time.Now()
	list := []Event{}
	q := r.db.NewSelect().Model(&list)
	if !from.IsZero() {
		q = q.Where("ends_at >= ?", from)
	}
	err := q.Order("starts_at ASC", "id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "events", time.Since(start), err)

	return list, err
}
