package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

const assignmentSelect = `SELECT a.id, a.course_id, a.title, a.description, a.due_date, a.total_points, c.code AS course_code
	FROM assignments a JOIN courses c ON c.id = a.course_id`

// AssignmentRepository reads and writes assignments. Reads join the parent course code.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, assignmentSelect+` WHERE a.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

// ListUpcomingForStudent returns assignments of the student's courses due at or after from,
// earliest first.
func (r *AssignmentRepository) ListUpcomingForStudent(ctx context.Context, studentID int64, from time.Time) ([]models.Assignment, error) {
	query := assignmentSelect + ` JOIN enrollments e ON e.course_id = a.course_id
		WHERE e.student_id = $1 AND a.due_date >= $2
		ORDER BY a.due_date ASC, a.id ASC`
	items := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &items, query, studentID, from); err != nil {
		return nil, fmt.Errorf("list upcoming assignments: %w", err)
	}
	return items, nil
}

// ListByCourse returns a course's assignments ordered by due date.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	items := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &items, assignmentSelect+` WHERE a.course_id = $1 ORDER BY a.due_date ASC, a.id ASC`, courseID); err != nil {
		return nil, fmt.Errorf("list course assignments: %w", err)
	}
	return items, nil
}

// Create inserts an assignment and sets its id.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	const query = `INSERT INTO assignments (course_id, title, description, due_date, total_points)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &a.ID, query, a.CourseID, a.Title, a.Description, a.DueDate, a.TotalPoints); err != nil {
		return fmt.Errorf("create assignment: %w", translatePQ(err))
	}
	return nil
}

// Update writes every mutable column of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	const query = `UPDATE assignments SET course_id = $2, title = $3, description = $4, due_date = $5, total_points = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, a.ID, a.CourseID, a.Title, a.Description, a.DueDate, a.TotalPoints)
	if err != nil {
		return fmt.Errorf("update assignment: %w", translatePQ(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
