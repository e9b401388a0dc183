package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agency-service/internal/db"
	"agency-service/internal/metrics"
	"agency-service/internal/schema"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	ExistingEmails(ctx context.Context, emails []string) (map[string]bool, error)
	Update(ctx context.Context, student *Student) error
	UpdateColumns(ctx context.Context, student *Student, columns []string) error
	Delete(ctx context.Context, id int) error
	StageCounts(ctx context.Context) (StageCounts, error)
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

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	start := time.Now()
	students := []Student{}
	err := r.db.NewSelect().Model(&students).Order("id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("email = ?", email).
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) ExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(emails) == 0 {
		return found, nil
	}

	start := time.Now()
	var existing []string
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("email").
		Where("email IN (?)", bun.In(emails)).
		Scan(ctx, &existing)

	r.metrics.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		found[e] = true
	}
	return found, nil
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	start := time.Now()
	student.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(student).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "students", time.Since(start), err)

	return checkAffected(result, err)
}

func (r *repository) UpdateColumns(ctx context.Context, student *Student, columns []string) error {
	start := time.Now()
	student.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(student).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "students", time.Since(start), err)

	return checkAffected(result, err)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	student := &Student{ID: id}
	result, err := r.db.NewDelete().Model(student).WherePK().Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	return checkAffected(result, err)
}

func (r *repository) StageCounts(ctx context.Context) (StageCounts, error) {
	start := time.Now()
	var rows []struct {
		Stage schema.Stage `bun:"stage"`
		Count int          `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("stage").
		ColumnExpr("count(*) AS count").
		Group("stage").
		Scan(ctx, &rows)

	r.metrics.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	counts := make(StageCounts, len(schema.Stages()))
	for _, st := range schema.Stages() {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Stage] = row.Count
	}
	return counts, nil
}

func checkAffected(result sql.Result, err error) error {
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}
