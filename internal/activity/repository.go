package activity

import (
	"context"
	"time"

	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, q Query) ([]Entry, error)
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

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(entry).Returning("id").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "activity_log", time.Since(start), err)

	return err
}

func (r *repository) Recent(ctx context.Context, q Query) ([]Entry, error) {
	start := time.Now()
	entries := []Entry{}
	sel := r.db.NewSelect().Model(&entries)
	if q.Entity != "" {
		sel = sel.Where("entity = ?", q.Entity)
	}
	err := sel.Order("occurred_at DESC", "id DESC").Limit(q.Limit).Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "activity_log", time.Since(start), err)

	return entries, err
}
