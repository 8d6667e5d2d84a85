package models

import "time"

// Enrollment links one student to one course. Course is populated by joined reads.
type Enrollment struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	CourseID       int64     `db:"course_id" json:"course_id"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	Course         Course    `db:"course" json:"course"`
}
