package models

import "time"

// ContentStatus tracks background processing of an uploaded file.
type ContentStatus string

const (
	ContentPending   ContentStatus = "PENDING"
	ContentProcessed ContentStatus = "PROCESSED"
	ContentFailed    ContentStatus = "FAILED"
)

// CourseContent is a file a teacher uploaded for a course.
type CourseContent struct {
	ID            int64         `db:"id" json:"id"`
	CourseID      int64         `db:"course_id" json:"course_id"`
	UploadedBy    int64         `db:"uploaded_by" json:"uploaded_by"`
	OriginalName  string        `db:"original_name" json:"original_name"`
	StoredPath    string        `db:"stored_path" json:"-"`
	MimeType      string        `db:"mime_type" json:"mime_type"`
	SizeBytes     int64         `db:"size_bytes" json:"size_bytes"`
	Status        ContentStatus `db:"status" json:"status"`
	ExtractedText *string       `db:"extracted_text" json:"-"`
	UploadedAt    time.Time     `db:"uploaded_at" json:"uploaded_at"`
	ProcessedAt   *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
}
