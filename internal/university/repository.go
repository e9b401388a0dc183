package university

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agency-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, university *University) (*University, error)
	GetAll(ctx context.Context) ([]University, error)
	GetByID(ctx context.Context, id int) (*University, error)
	Update(ctx context.Context, university *University) error
	Delete(ctx context.Context, id int) error
	CreateProgram(ctx context.Context, program *Program) (*Program, error)
	GetProgram(ctx context.Context, id int) (*Program, error)
	ProgramsByUniversity(ctx context.Context, universityID int) ([]Program, error)
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

func (r *repository) Create(ctx context.Context, university *University) (*University, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(university).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "universities", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return university, nil
}

func (r *repository) GetAll(ctx context.Context) ([]University, error) {
	start := time.Now()
	universities := []University{}
	err := r.db.NewSelect().Model(&universities).Order("name ASC", "id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "universities", time.Since(start), err)

	return universities, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*University, error) {
	start := time.Now()
	university := new(University)
	err := r.db.NewSelect().
		Model(university).
		Relation("Programs", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("p.name ASC")
		}).
		Where("u.id = ?", id).
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "universities", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}
	return university, nil
}

func (r *repository) Update(ctx context.Context, university *University) error {
	start := time.Now()
	university.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(university).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "universities", time.Since(start), err)

	return checkAffected(result, err, ErrUniversityNotFound)
}

// Delete removes the university together with its programs.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Program)(nil)).Where("university_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		result, err := tx.NewDelete().Model((*University)(nil)).Where("id = ?", id).Exec(ctx)
		return checkAffected(result, err, ErrUniversityNotFound)
	})

	r.metrics.RecordQuery(ctx, "delete", "universities", time.Since(start), err)

	return err
}

func (r *repository) CreateProgram(ctx context.Context, program *Program) (*Program, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(program).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "programs", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return program, nil
}

func (r *repository) GetProgram(ctx context.Context, id int) (*Program, error) {
	start := time.Now()
	program := new(Program)
	err := r.db.NewSelect().Model(program).Where("id = ?", id).Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "programs", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

func (r *repository) ProgramsByUniversity(ctx context.Context, universityID int) ([]Program, error) {
	start := time.Now()
	programs := []Program{}
	err := r.db.NewSelect().
		Model(&programs).
		Where("university_id = ?", universityID).
		Order("name ASC").
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "programs", time.Since(start), err)

	return programs, err
}

func checkAffected(result sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
