package application

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	GetAll(ctx context.Context, filter ListFilter) ([]Application, error)
	GetByID(ctx context.Context, id int) (*Application, error)
	UpdateColumns(ctx context.Context, app *Application, columns []string) error
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

func (r *repository) Create(ctx context.Context, app *Application) (*Application, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(app).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "applications", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return app, nil
}

func withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Student").
		Relation("University").
		Relation("Program").
		Relation("Agent")
}

func (r *repository) GetAll(ctx context.Context, filter ListFilter) ([]Application, error) {
	start := time.Now()
	apps := []Application{}
	q := withRelations(r.db.NewSelect().Model(&apps))
	if filter.StudentID > 0 {
		q = q.Where("app.student_id = ?", filter.StudentID)
	}
	if filter.UniversityID > 0 {
		q = q.Where("app.university_id = ?", filter.UniversityID)
	}
	if filter.Stage != "" {
		q = q.Where("app.stage = ?", filter.Stage)
	}
	err := q.Order("app.updated_at DESC", "app.id DESC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	return apps, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Application, error) {
	start := time.Now()
	app := new(Application)
	err := withRelations(r.db.NewSelect().Model(app)).
		Where("app.id = ?", id).
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) UpdateColumns(ctx context.Context, app *Application, columns []string) error {
	start := time.Now()
	app.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(app).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "applications", time.Since(start), err)

	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Application)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "applications", time.Since(start), err)

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
		return ErrApplicationNotFound
	}
	return nil
}
