package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

// TokenPair is the body of /token/ and /token/refresh/.
type TokenPair = models.TokenPair

// Decimal decodes a JSON number or a numeric string. Timestamps in the read structs below stay
// strings so the dashboard can parse them leniently.
type Decimal float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*d = Decimal(v)
	return nil
}

// UserProfile mirrors ProfileSchema.
type UserProfile struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Groups    []string `json:"groups"`
}

// CourseRead mirrors the CourseSchema read view.
type CourseRead struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	TeacherUsername *string `json:"teacher_username"`
}

// EnrollmentRead mirrors StudentEnrollmentSchema.
type EnrollmentRead struct {
	ID             int64      `json:"id"`
	Course         CourseRead `json:"course"`
	EnrollmentDate string     `json:"enrollment_date"`
}

// AssignmentRead mirrors the AssignmentSchema read view.
type AssignmentRead struct {
	ID          int64   `json:"id"`
	CourseCode  string  `json:"course_code"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	TotalPoints Decimal `json:"total_points"`
}

// GradeRead mirrors the GradeSchema read view.
type GradeRead struct {
	ID               int64    `json:"id"`
	AssignmentTitle  string   `json:"assignment_title"`
	StudentUsername  string   `json:"student_username"`
	CourseCode       string   `json:"course_code"`
	Score            *Decimal `json:"score"`
	SubmissionStatus string   `json:"submission_status"`
	SubmittedAt      *string  `json:"submitted_at"`
	Feedback         *string  `json:"feedback"`
}

// ChatbotQueryRequest is the chatbot request body.
type ChatbotQueryRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

// ChatbotReply is the chatbot response body.
type ChatbotReply struct {
	Response string `json:"response"`
}

// UploadContentRequest carries the non-file fields of an upload.
type UploadContentRequest struct {
	CourseID int64 `form:"course_id" json:"course_id" validate:"required,gt=0"`
}

// ContentRead describes an uploaded file. DownloadURL is signed and expires.
type ContentRead struct {
	ID           int64  `json:"id"`
	CourseID     int64  `json:"course_id"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
	Status       string `json:"status"`
	UploadedAt   string `json:"uploaded_at"`
	DownloadURL  string `json:"download_url,omitempty"`
	URLExpiresAt string `json:"url_expires_at,omitempty"`
}

// UploadContentResponse is returned with 201 Created.
type UploadContentResponse struct {
	Message string      `json:"message"`
	Content ContentRead `json:"content"`
}

// UploadErrorResponse is the body of a rejected upload. The dashboard reads the error key.
type UploadErrorResponse struct {
	Error string `json:"error"`
}

// ChatHistoryItem is one past exchange.
type ChatHistoryItem struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// ContentFromModel converts a stored content row.
func ContentFromModel(c models.CourseContent) ContentRead {
	return ContentRead{
		ID:         c.ID,
		CourseID:   c.CourseID,
		FileName:   c.OriginalName,
		MimeType:   c.MimeType,
		SizeBytes:  c.SizeBytes,
		Status:     string(c.Status),
		UploadedAt: c.UploadedAt.UTC().Format(time.RFC3339),
	}
}

// ChatHistoryFromModels converts stored messages.
func ChatHistoryFromModels(items []models.ChatMessage) []ChatHistoryItem {
	out := make([]ChatHistoryItem, 0, len(items))
	for _, m := range items {
		out = append(out, ChatHistoryItem{Query: m.Query, Response: m.Response, CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339)})
	}
	return out
}
