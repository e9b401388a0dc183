package message

import (
	"context"
	"time"

	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, msg *Message) (*Message, error)
	GetAll(ctx context.Context, studentID int) ([]Message, error)
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

func (r *repository) Create(ctx context.Context, msg *Message) (*Message, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(msg).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "messages", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *repository) GetAll(ctx context.Context, studentID int) ([]Message, error) {
	start := time.Now()
	messages := []Message{}
	q := r.db.NewSelect().Model(&messages)
	if studentID > 0 {
		q = q.Where("student_id = ?", studentID)
	}
	err := q.Order("sent_at DESC", "id DESC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "messages", time.Since(start), err)

	return messages, err
}
