package models

// Course is a taught course. TeacherID is nil while the course is unassigned.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	Code      string `db:"code" json:"code"`
	Name      string `db:"name" json:"name"`
	TeacherID *int64 `db:"teacher_id" json:"teacher_id"`

	// TeacherUsername is joined from users; nil when the course has no teacher.
	TeacherUsername *string `db:"teacher_username" json:"teacher_username"`
}
