package card

import (
	"context"
	"time"

	"agency-service/internal/db"
	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, card *Card) (*Card, error)
	GetAll(ctx context.Context, studentID int) ([]Card, error)
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

func (r *repository) Create(ctx context.Context, card *Card) (*Card, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(card).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "cards", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCardNumberExists
		}
		return nil, err
	}
	return card, nil
}

// GetAll lists cards newest first; studentID 0 means all students.
func (r *repository) GetAll(ctx context.Context, studentID int) ([]Card, error) {
	start := time.Now()
	cards := []Card{}
	q := r.db.NewSelect().Model(&cards)
	if studentID > 0 {
		q = q.Where("student_id = ?", studentID)
	}
	err := q.Order("issued_at DESC", "id DESC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "cards", time.Since(start), err)

	return cards, err
}
