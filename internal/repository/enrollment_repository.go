package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

// EnrollmentRepository manages student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListForStudent returns a student's enrollments with the course and its teacher joined in.
func (r *EnrollmentRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.enrollment_date,
		c.id AS "course.id", c.code AS "course.code", c.name AS "course.name",
		c.teacher_id AS "course.teacher_id", u.username AS "course.teacher_username"
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN users u ON u.id = c.teacher_id
		WHERE e.student_id = $1
		ORDER BY c.code`
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// IsEnrolled reports whether the student is enrolled in the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return ok, nil
}

// Enroll links a student to a course; an existing enrollment is kept as is.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID int64) error {
	const query = `INSERT INTO enrollments (student_id, course_id) VALUES ($1, $2) ON CONFLICT (student_id, course_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, studentID, courseID); err != nil {
		return fmt.Errorf("enroll student: %w", translatePQ(err))
	}
	return nil
}

// StudentIDs lists the students enrolled in a course.
func (r *EnrollmentRepository) StudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY student_id`, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return ids, nil
}
