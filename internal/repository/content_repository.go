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

const contentColumns = `id, course_id, uploaded_by, original_name, stored_path, mime_type, size_bytes, status, extracted_text, uploaded_at, processed_at`

// ContentRepository stores metadata of uploaded course files.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a content row and sets its id and upload time.
func (r *ContentRepository) Create(ctx context.Context, c *models.CourseContent) error {
	const query = `INSERT INTO course_contents (course_id, uploaded_by, original_name, stored_path, mime_type, size_bytes, status)
		VALUES (:course_id, :uploaded_by, :original_name, :stored_path, :mime_type, :size_bytes, :status)
		RETURNING id, uploaded_at`
	rows, err := r.db.NamedQueryContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("create content: %w", translatePQ(err))
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("create content: %w", err)
		}
		return fmt.Errorf("create content: no id returned")
	}
	if err := rows.Scan(&c.ID, &c.UploadedAt); err != nil {
		return fmt.Errorf("scan content id: %w", err)
	}
	return nil
}

// FindByID returns one content row.
func (r *ContentRepository) FindByID(ctx context.Context, id int64) (*models.CourseContent, error) {
	var c models.CourseContent
	if err := r.db.GetContext(ctx, &c, `SELECT `+contentColumns+` FROM course_contents WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	return &c, nil
}

// ListByCourse returns a course's uploads, newest first.
func (r *ContentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseContent, error) {
	items := []models.CourseContent{}
	if err := r.db.SelectContext(ctx, &items, `SELECT `+contentColumns+` FROM course_contents WHERE course_id = $1 ORDER BY uploaded_at DESC, id DESC`, courseID); err != nil {
		return nil, fmt.Errorf("list course contents: %w", err)
	}
	return items, nil
}

// ListProcessedForStudent returns processed content of every course the student is enrolled in.
func (r *ContentRepository) ListProcessedForStudent(ctx context.Context, studentID int64) ([]models.CourseContent, error) {
	const query = `SELECT cc.id, cc.course_id, cc.uploaded_by, cc.original_name, cc.stored_path, cc.mime_type, cc.size_bytes,
		cc.status, cc.extracted_text, cc.uploaded_at, cc.processed_at
		FROM course_contents cc
		JOIN enrollments e ON e.course_id = cc.course_id
		WHERE e.student_id = $1 AND cc.status = $2
		ORDER BY cc.uploaded_at DESC`
	items := []models.CourseContent{}
	if err := r.db.SelectContext(ctx, &items, query, studentID, models.ContentProcessed); err != nil {
		return nil, fmt.Errorf("list student contents: %w", err)
	}
	return items, nil
}

// MarkProcessed stores the extracted text and flips the status.
func (r *ContentRepository) MarkProcessed(ctx context.Context, id int64, text *string, at time.Time) error {
	const query = `UPDATE course_contents SET status = $2, extracted_text = $3, processed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ContentProcessed, text, at); err != nil {
		return fmt.Errorf("mark content processed: %w", err)
	}
	return nil
}

// MarkFailed flags content whose processing gave up.
func (r *ContentRepository) MarkFailed(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE course_contents SET status = $2, processed_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ContentFailed, at); err != nil {
		return fmt.Errorf("mark content failed: %w", err)
	}
	return nil
}
