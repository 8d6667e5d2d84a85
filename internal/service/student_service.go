package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/pkg/cache"
)

const (
	collectionCourses = "courses"
	collectionGrades  = "grades"
)

type studentEnrollmentReader interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
}

type studentAssignmentReader interface {
	ListUpcomingForStudent(ctx context.Context, studentID int64, from time.Time) ([]models.Assignment, error)
}

type studentGradeReader interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.Grade, error)
}

// StudentService serves the caller-scoped "my-*" collections as rendered JSON arrays.
type StudentService struct {
	enrollments studentEnrollmentReader
	assignments studentAssignmentReader
	grades      studentGradeReader
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(enrollments studentEnrollmentReader, assignments studentAssignmentReader, grades studentGradeReader, cacheSvc *CacheService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		enrollments: enrollments,
		assignments: assignments,
		grades:      grades,
		cache:       cacheSvc,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// MyCourses lists the caller's enrollments with nested course views.
func (s *StudentService) MyCourses(ctx context.Context, caller *models.JWTClaims) (json.RawMessage, bool, error) {
	return s.remember(ctx, caller, collectionCourses, func(ctx context.Context) (json.RawMessage, error) {
		items, err := s.enrollments.ListForStudent(ctx, caller.UserID)
		if err != nil {
			return nil, internal(err, "failed to list enrollments")
		}
		return json.Marshal(dto.StudentEnrollmentSchema.ReadMany(items))
	})
}

// MyAssignments lists assignments still open in the caller's courses, earliest due first.
// The upcoming window moves with time, so this collection is never cached.
func (s *StudentService) MyAssignments(ctx context.Context, caller *models.JWTClaims) (json.RawMessage, bool, error) {
	items, err := s.assignments.ListUpcomingForStudent(ctx, caller.UserID, s.now())
	if err != nil {
		return nil, false, internal(err, "failed to list assignments")
	}
	payload, err := json.Marshal(dto.AssignmentSchema.ReadMany(items))
	if err != nil {
		return nil, false, internal(err, "failed to encode assignments")
	}
	return payload, false, nil
}

// MyGrades lists the caller's grades.
func (s *StudentService) MyGrades(ctx context.Context, caller *models.JWTClaims) (json.RawMessage, bool, error) {
	return s.remember(ctx, caller, collectionGrades, func(ctx context.Context) (json.RawMessage, error) {
		items, err := s.grades.ListForStudent(ctx, caller.UserID)
		if err != nil {
			return nil, internal(err, "failed to list grades")
		}
		return json.Marshal(dto.GradeSchema.ReadMany(items))
	})
}

func (s *StudentService) remember(ctx context.Context, caller *models.JWTClaims, collection string, load func(context.Context) (json.RawMessage, error)) (json.RawMessage, bool, error) {
	payload, hit, err := s.cache.Remember(ctx, cache.StudentKey(caller.UserID, collection), load)
	if err != nil {
		return nil, false, err
	}
	if hit {
		s.logger.Debug("student collection served from cache", zap.Int64("user_id", caller.UserID), zap.String("collection", collection))
	}
	return payload, hit, nil
}
