package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
	"github.com/noah-isme/academic-dashboard/internal/repository"
	"github.com/noah-isme/academic-dashboard/pkg/cache"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type gradeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Grade, error)
	Create(ctx context.Context, g *models.Grade) error
	Update(ctx context.Context, g *models.Grade) error
	UpsertSubmission(ctx context.Context, g *models.Grade) error
}

type assignmentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
}

// studentSubmissionFields are the only write-view fields a student may send.
var studentSubmissionFields = []string{"assignment"}

var errAlreadyGraded = appErrors.Clone(appErrors.ErrConflict, "This assignment has already been graded.")

// GradeService handles teacher grading and student submissions.
type GradeService struct {
	repo        gradeRepository
	assignments assignmentFinder
	courses     courseFinder
	enrollments enrollmentChecker
	cache       *CacheService
	audit       auditWriter
	logger      *zap.Logger
	now         func() time.Time
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, assignments assignmentFinder, courses courseFinder, enrollments enrollmentChecker, cacheSvc *CacheService, audit auditWriter, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		repo:        repo,
		assignments: assignments,
		courses:     courses,
		enrollments: enrollments,
		cache:       cacheSvc,
		audit:       audit,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListByCourse returns every grade recorded in a course taught by the caller.
func (s *GradeService) ListByCourse(ctx context.Context, courseID int64, caller *models.JWTClaims) (*models.Course, []models.Grade, error) {
	course, err := ownedCourse(ctx, s.courses, courseID, caller)
	if err != nil {
		return nil, nil, err
	}
	grades, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, internal(err, "failed to list grades")
	}
	return course, grades, nil
}

// Create records a grade for an enrolled student.
func (s *GradeService) Create(ctx context.Context, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	var grade models.Grade
	if err := dto.GradeSchema.Decode(body, &grade, false); err != nil {
		return projection.Record{}, validationError(err, "invalid grade payload")
	}
	assignment, err := s.checkTarget(ctx, &grade, caller)
	if err != nil {
		return projection.Record{}, err
	}
	if grade.SubmissionStatus == "" {
		grade.SubmissionStatus = models.SubmissionPending
		if grade.Score != nil {
			grade.SubmissionStatus = models.SubmissionGraded
		}
	}
	if err := checkScore(grade.Score, assignment.TotalPoints); err != nil {
		return projection.Record{}, err
	}
	if err := s.repo.Create(ctx, &grade); err != nil {
		return projection.Record{}, gradeWriteError(err, "failed to create grade")
	}
	return s.reload(ctx, grade.ID, models.AuditActionGradeWrite, caller, meta)
}

// Update applies a partial grade write.
func (s *GradeService) Update(ctx context.Context, id int64, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return projection.Record{}, internal(err, "failed to load grade")
	}
	if _, err := ownedCourse(ctx, s.courses, grade.CourseID, caller); err != nil {
		return projection.Record{}, err
	}
	previousStudent := grade.StudentID
	if err := dto.GradeSchema.Decode(body, grade, true); err != nil {
		return projection.Record{}, validationError(err, "invalid grade payload")
	}
	assignment, err := s.checkTarget(ctx, grade, caller)
	if err != nil {
		return projection.Record{}, err
	}
	if err := checkScore(grade.Score, assignment.TotalPoints); err != nil {
		return projection.Record{}, err
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return projection.Record{}, gradeWriteError(err, "failed to update grade")
	}
	if previousStudent != grade.StudentID {
		s.cache.Invalidate(ctx, cache.StudentPattern(previousStudent))
	}
	return s.reload(ctx, grade.ID, models.AuditActionGradeWrite, caller, meta)
}

// Submit records the caller's own submission for an assignment. Any student id in the body is
// replaced by the caller, and grading fields are ignored.
func (s *GradeService) Submit(ctx context.Context, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		verr := &projection.ValidationError{}
		verr.Add(projection.NonFieldErrors, projection.MsgNotObject)
		return projection.Record{}, validationError(verr, "invalid submission payload")
	}
	allowed := make(map[string]json.RawMessage, len(studentSubmissionFields)+1)
	for _, name := range studentSubmissionFields {
		if raw, ok := payload[name]; ok {
			allowed[name] = raw
		}
	}
	allowed["student"] = json.RawMessage(strconv.FormatInt(caller.UserID, 10))

	var grade models.Grade
	if err := dto.GradeSchema.Apply(&grade, allowed, false); err != nil {
		return projection.Record{}, validationError(err, "invalid submission payload")
	}

	assignment, err := s.assignments.FindByID(ctx, grade.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, fieldError("assignment", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", grade.AssignmentID))
		}
		return projection.Record{}, internal(err, "failed to load assignment")
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, caller.UserID, assignment.CourseID)
	if err != nil {
		return projection.Record{}, internal(err, "failed to check enrollment")
	}
	if !enrolled {
		return projection.Record{}, appErrors.Clone(appErrors.ErrForbidden, "You are not enrolled in this course.")
	}

	now := s.now()
	grade.SubmittedAt = &now
	grade.SubmissionStatus = models.SubmissionSubmitted
	if now.After(assignment.DueDate) {
		grade.SubmissionStatus = models.SubmissionLate
	}
	if err := s.repo.UpsertSubmission(ctx, &grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, errAlreadyGraded
		}
		return projection.Record{}, internal(err, "failed to store submission")
	}
	return s.reload(ctx, grade.ID, models.AuditActionSubmission, caller, meta)
}

// checkTarget verifies the caller teaches the assignment's course and the student is enrolled.
func (s *GradeService) checkTarget(ctx context.Context, grade *models.Grade, caller *models.JWTClaims) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, grade.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fieldError("assignment", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", grade.AssignmentID))
		}
		return nil, internal(err, "failed to load assignment")
	}
	if _, err := ownedCourse(ctx, s.courses, assignment.CourseID, caller); err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, grade.StudentID, assignment.CourseID)
	if err != nil {
		return nil, internal(err, "failed to check enrollment")
	}
	if !enrolled {
		return nil, fieldError("student", "Student is not enrolled in this course.")
	}
	return assignment, nil
}

func checkScore(score *float64, total float64) error {
	if score == nil {
		return nil
	}
	if *score < 0 || *score > total {
		return fieldError("score", fmt.Sprintf("Ensure this value is between 0 and %s.", strconv.FormatFloat(total, 'f', -1, 64)))
	}
	return nil
}

func gradeWriteError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fieldError(projection.NonFieldErrors, "The fields assignment, student must make a unique set.")
	}
	if errors.Is(err, repository.ErrForeignKey) {
		return fieldError(projection.NonFieldErrors, "Referenced assignment or student does not exist.")
	}
	return internal(err, message)
}

func (s *GradeService) reload(ctx context.Context, id int64, action string, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return projection.Record{}, internal(err, "failed to reload grade")
	}
	s.cache.Invalidate(ctx, cache.StudentPattern(grade.StudentID))
	recordAudit(ctx, s.audit, s.logger, caller, action, "grade", id, map[string]interface{}{
		"assignment_id":     grade.AssignmentID,
		"student_id":        grade.StudentID,
		"score":             grade.Score,
		"submission_status": grade.SubmissionStatus,
	}, meta)
	return dto.GradeSchema.Read(*grade), nil
}
