package agent

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agency-service/internal/db"
	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, agent *Agent) (*Agent, error)
	GetAll(ctx context.Context) ([]Agent, error)
	GetByID(ctx context.Context, id int) (*Agent, error)
	Update(ctx context.Context, agent *Agent) error
	Delete(ctx context.Context, id int) error
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

func (r *repository) Create(ctx context.Context, agent *Agent) (*Agent, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(agent).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "agents", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return agent, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Agent, error) {
	start := time.Now()
	agents := []Agent{}
	err := r.db.NewSelect().Model(&agents).Order("name ASC", "id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "agents", time.Since(start), err)

	return agents, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Agent, error) {
	start := time.Now()
	agent := new(Agent)
	err := r.db.NewSelect().Model(agent).Where("id = ?", id).Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "agents", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return agent, nil
}

func (r *repository) Update(ctx context.Context, agent *Agent) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(agent).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "agents", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireRow(result)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Agent)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "agents", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAgentNotFound
	}
	return nil
}
