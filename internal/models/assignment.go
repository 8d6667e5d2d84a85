package models

import "time"

// DefaultTotalPoints applies when a new assignment omits total_points.
const DefaultTotalPoints = 100

// Assignment belongs to exactly one course.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	TotalPoints float64   `db:"total_points" json:"total_points"`

	CourseCode string `db:"course_code" json:"course_code"`
}
