package roster

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"candrive-backend/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateStudent(ctx context.Context, student *Student) (*Student, error)
	GetStudentByID(ctx context.Context, id int64) (*Student, error)
	StudentsByEvent(ctx context.Context, eventID int64) ([]Student, error)
	ListStudents(ctx context.Context, eventID int64, filter StudentFilter) ([]Student, error)
	SearchStudents(ctx context.Context, eventID int64, q string, limit int) ([]Student, error)
	FindStudentsByName(ctx context.Context, eventID int64, first, last string) ([]Student, error)
	UpdateStudent(ctx context.Context, student *Student) error
	DeleteStudent(ctx context.Context, id int64) error
	DeleteStudentsByEvent(ctx context.Context, eventID int64) (int64, error)

	CreateTeacher(ctx context.Context, teacher *Teacher) (*Teacher, error)
	GetTeacherByID(ctx context.Context, id int64) (*Teacher, error)
	TeachersByEvent(ctx context.Context, eventID int64) ([]Teacher, error)
	FindTeacherByFullName(ctx context.Context, eventID int64, fullName string) (*Teacher, error)
	FirstStudentForTeacher(ctx context.Context, eventID int64, teacherLastName string) (*Student, error)
	UpdateTeacher(ctx context.Context, teacher *Teacher) error
	DeleteTeachersByEvent(ctx context.Context, eventID int64) (int64, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) CreateStudent(ctx context.Context, student *Student) (*Student, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return student, nil
}

func (r *repository) GetStudentByID(ctx context.Context, id int64) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("s.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) StudentsByEvent(ctx context.Context, eventID int64) ([]Student, error) {
	start := time.Now()
	var students []Student
	err := r.db.NewSelect().
		Model(&students).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) ListStudents(ctx context.Context, eventID int64, filter StudentFilter) ([]Student, error) {
	start := time.Now()
	var students []Student

	q := r.db.NewSelect().
		Model(&students).
		Where("event_id = ?", eventID)

	// lower() LIKE instead of ILIKE keeps the queries portable between
	// the postgres and sqlite backends.
	if filter.Grade != "" {
		q = q.Where("grade = ?", filter.Grade)
	}
	if filter.Name != "" {
		q = q.Where("lower(first_name || ' ' || last_name) LIKE ?", containsPattern(filter.Name))
	}
	if filter.HomeroomNumber != "" {
		q = q.Where("lower(homeroom_number) LIKE ?", containsPattern(filter.HomeroomNumber))
	}
	if filter.HomeroomTeacher != "" {
		q = q.Where("lower(homeroom_teacher) LIKE ?", containsPattern(filter.HomeroomTeacher))
	}

	err := q.Order("last_name ASC", "first_name ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) SearchStudents(ctx context.Context, eventID int64, query string, limit int) ([]Student, error) {
	start := time.Now()
	var students []Student

	err := r.db.NewSelect().
		Model(&students).
		Where("event_id = ?", eventID).
		Where("lower(first_name || ' ' || last_name) LIKE ?", containsPattern(query)).
		Order("last_name ASC", "first_name ASC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) FindStudentsByName(ctx context.Context, eventID int64, first, last string) ([]Student, error) {
	start := time.Now()
	var students []Student

	err := r.db.NewSelect().
		Model(&students).
		Where("event_id = ?", eventID).
		Where("lower(first_name) = ?", strings.ToLower(strings.TrimSpace(first))).
		Where("lower(last_name) = ?", strings.ToLower(strings.TrimSpace(last))).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) UpdateStudent(ctx context.Context, student *Student) error {
	student.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := r.db.NewUpdate().Model(student).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)

	if err != nil {
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

func (r *repository) DeleteStudent(ctx context.Context, id int64) error {
	start := time.Now()
	student := &Student{ID: id}
	result, err := r.db.NewDelete().Model(student).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	if err != nil {
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

func (r *repository) DeleteStudentsByEvent(ctx context.Context, eventID int64) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Student)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) CreateTeacher(ctx context.Context, teacher *Teacher) (*Teacher, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(teacher).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "teachers", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return teacher, nil
}

func (r *repository) GetTeacherByID(ctx context.Context, id int64) (*Teacher, error) {
	start := time.Now()
	teacher := new(Teacher)
	err := r.db.NewSelect().Model(teacher).Where("t.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teachers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return teacher, nil
}

func (r *repository) TeachersByEvent(ctx context.Context, eventID int64) ([]Teacher, error) {
	start := time.Now()
	var teachers []Teacher
	err := r.db.NewSelect().
		Model(&teachers).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teachers", time.Since(start), err)

	return teachers, err
}

func (r *repository) FindTeacherByFullName(ctx context.Context, eventID int64, fullName string) (*Teacher, error) {
	start := time.Now()
	teacher := new(Teacher)
	err := r.db.NewSelect().
		Model(teacher).
		Where("event_id = ?", eventID).
		Where("lower(full_name) = ?", strings.ToLower(strings.TrimSpace(fullName))).
		Limit(1).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teachers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return teacher, nil
}

func (r *repository) FirstStudentForTeacher(ctx context.Context, eventID int64, teacherLastName string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("event_id = ?", eventID).
		Where("lower(homeroom_teacher) LIKE ?", containsPattern(teacherLastName)).
		Where("homeroom_number != ''").
		Order("id ASC").
		Limit(1).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) UpdateTeacher(ctx context.Context, teacher *Teacher) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(teacher).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "teachers", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTeacherNotFound
	}
	return nil
}

func (r *repository) DeleteTeachersByEvent(ctx context.Context, eventID int64) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Teacher)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "teachers", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
