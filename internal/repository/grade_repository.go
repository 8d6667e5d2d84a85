package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

const gradeSelect = `SELECT g.id, g.assignment_id, g.student_id, g.score, g.submission_status, g.submitted_at, g.feedback,
	a.title AS assignment_title, u.username AS student_username, c.id AS course_id, c.code AS course_code, a.total_points
	FROM grades g
	JOIN assignments a ON a.id = g.assignment_id
	JOIN courses c ON c.id = a.course_id
	JOIN users u ON u.id = g.student_id`

// GradeRepository reads and writes grades. Reads join assignment, course and student data.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByID returns one grade.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	var g models.Grade
	if err := r.db.GetContext(ctx, &g, gradeSelect+` WHERE g.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &g, nil
}

// ListForStudent returns every grade of a student.
func (r *GradeRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	grades := []models.Grade{}
	if err := r.db.SelectContext(ctx, &grades, gradeSelect+` WHERE g.student_id = $1 ORDER BY c.code, a.due_date`, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// ListByCourse returns every grade recorded for a course.
func (r *GradeRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Grade, error) {
	grades := []models.Grade{}
	if err := r.db.SelectContext(ctx, &grades, gradeSelect+` WHERE c.id = $1 ORDER BY u.username, a.due_date`, courseID); err != nil {
		return nil, fmt.Errorf("list course grades: %w", err)
	}
	return grades, nil
}

// Create inserts a grade and sets its id. A second grade for the same assignment and
// student fails with ErrDuplicate.
func (r *GradeRepository) Create(ctx context.Context, g *models.Grade) error {
	const query = `INSERT INTO grades (assignment_id, student_id, score, submission_status, submitted_at, feedback)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &g.ID, query, g.AssignmentID, g.StudentID, g.Score, g.SubmissionStatus, g.SubmittedAt, g.Feedback); err != nil {
		return fmt.Errorf("create grade: %w", translatePQ(err))
	}
	return nil
}

// Update writes every mutable column of a grade.
func (r *GradeRepository) Update(ctx context.Context, g *models.Grade) error {
	const query = `UPDATE grades SET assignment_id = $2, student_id = $3, score = $4, submission_status = $5, submitted_at = $6, feedback = $7 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, g.ID, g.AssignmentID, g.StudentID, g.Score, g.SubmissionStatus, g.SubmittedAt, g.Feedback)
	if err != nil {
		return fmt.Errorf("update grade: %w", translatePQ(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertSubmission records a student's submission. A grade that is already graded is left
// untouched and sql.ErrNoRows is returned.
func (r *GradeRepository) UpsertSubmission(ctx context.Context, g *models.Grade) error {
	const query = `INSERT INTO grades (assignment_id, student_id, submission_status, submitted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (assignment_id, student_id) DO UPDATE
			SET submission_status = EXCLUDED.submission_status, submitted_at = EXCLUDED.submitted_at
			WHERE grades.submission_status <> 'graded'
		RETURNING id`
	if err := r.db.GetContext(ctx, &g.ID, query, g.AssignmentID, g.StudentID, g.SubmissionStatus, g.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("upsert submission: %w", translatePQ(err))
	}
	return nil
}
