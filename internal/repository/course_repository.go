package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

const courseSelect = `SELECT c.id, c.code, c.name, c.teacher_id, u.username AS teacher_username
	FROM courses c LEFT JOIN users u ON u.id = c.teacher_id`

// CourseRepository reads and writes courses. Reads join the teacher's username.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course with its teacher username.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, courseSelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ListByTeacher returns the courses a teacher is assigned to.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Course, error) {
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, courseSelect+` WHERE c.teacher_id = $1 ORDER BY c.code`, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// Create inserts a course and sets its id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (code, name, teacher_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &course.ID, query, course.Code, course.Name, course.TeacherID); err != nil {
		return fmt.Errorf("create course: %w", translatePQ(err))
	}
	return nil
}

// Update writes every mutable column of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET code = $2, name = $3, teacher_id = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, course.ID, course.Code, course.Name, course.TeacherID)
	if err != nil {
		return fmt.Errorf("update course: %w", translatePQ(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertByCode inserts or refreshes a course keyed by code and sets its id.
func (r *CourseRepository) UpsertByCode(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (code, name, teacher_id) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, teacher_id = EXCLUDED.teacher_id
		RETURNING id`
	if err := r.db.GetContext(ctx, &course.ID, query, course.Code, course.Name, course.TeacherID); err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}
