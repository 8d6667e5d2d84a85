package models

import "time"

// SubmissionStatus enumerates the lifecycle of a student's work on an assignment.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionLate      SubmissionStatus = "late"
	SubmissionGraded    SubmissionStatus = "graded"
	SubmissionMissing   SubmissionStatus = "missing"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionSubmitted, SubmissionLate, SubmissionGraded, SubmissionMissing:
		return true
	}
	return false
}

// Grade records one student's result for one assignment. The trailing fields are joined
// from the assignment, course and user tables on read.
type Grade struct {
	ID               int64            `db:"id" json:"id"`
	AssignmentID     int64            `db:"assignment_id" json:"assignment_id"`
	StudentID        int64            `db:"student_id" json:"student_id"`
	Score            *float64         `db:"score" json:"score"`
	SubmissionStatus SubmissionStatus `db:"submission_status" json:"submission_status"`
	SubmittedAt      *time.Time       `db:"submitted_at" json:"submitted_at"`
	Feedback         *string          `db:"feedback" json:"feedback"`

	AssignmentTitle string  `db:"assignment_title" json:"assignment_title"`
	StudentUsername string  `db:"student_username" json:"student_username"`
	CourseID        int64   `db:"course_id" json:"course_id"`
	CourseCode      string  `db:"course_code" json:"course_code"`
	TotalPoints     float64 `db:"total_points" json:"total_points"`
}
