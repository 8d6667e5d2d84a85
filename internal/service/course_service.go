package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
	"github.com/noah-isme/academic-dashboard/internal/repository"
	"github.com/noah-isme/academic-dashboard/pkg/cache"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

type courseRoster interface {
	StudentIDs(ctx context.Context, courseID int64) ([]int64, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// CourseService manages course records. Writes are limited to staff users.
type CourseService struct {
	repo     courseRepository
	users    userLookup
	students courseRoster
	cache    *CacheService
	audit    auditWriter
	logger   *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, users userLookup, students courseRoster, cacheSvc *CacheService, audit auditWriter, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, users: users, students: students, cache: cacheSvc, audit: audit, logger: logger}
}

// ListForTeacher returns the courses assigned to the caller.
func (s *CourseService) ListForTeacher(ctx context.Context, caller *models.JWTClaims) ([]projection.Record, error) {
	courses, err := s.repo.ListByTeacher(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err, "failed to list courses")
	}
	return dto.CourseSchema.ReadMany(courses), nil
}

// Create decodes a course write view and stores it.
func (s *CourseService) Create(ctx context.Context, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	if !caller.IsStaff {
		return projection.Record{}, appErrors.ErrForbidden
	}
	var course models.Course
	if err := dto.CourseSchema.Decode(body, &course, false); err != nil {
		return projection.Record{}, validationError(err, "invalid course payload")
	}
	if err := s.checkTeacher(ctx, course.TeacherID); err != nil {
		return projection.Record{}, err
	}
	if err := s.repo.Create(ctx, &course); err != nil {
		return projection.Record{}, s.writeError(err, "failed to create course")
	}
	return s.reload(ctx, course.ID, caller, meta)
}

// Update applies a partial course write view.
func (s *CourseService) Update(ctx context.Context, id int64, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	if !caller.IsStaff {
		return projection.Record{}, appErrors.ErrForbidden
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return projection.Record{}, internal(err, "failed to load course")
	}
	before := course.TeacherID
	if err := dto.CourseSchema.Decode(body, course, true); err != nil {
		return projection.Record{}, validationError(err, "invalid course payload")
	}
	if course.TeacherID != nil && (before == nil || *before != *course.TeacherID) {
		if err := s.checkTeacher(ctx, course.TeacherID); err != nil {
			return projection.Record{}, err
		}
	}
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return projection.Record{}, s.writeError(err, "failed to update course")
	}
	s.invalidateStudents(ctx, course.ID)
	return s.reload(ctx, course.ID, caller, meta)
}

// invalidateStudents drops the cached collections of every student enrolled in the course,
// since they embed the course code, name and teacher.
func (s *CourseService) invalidateStudents(ctx context.Context, courseID int64) {
	ids, err := s.students.StudentIDs(ctx, courseID)
	if err != nil {
		s.logger.Warn("course roster lookup failed, clearing all student caches", zap.Int64("course_id", courseID), zap.Error(err))
		s.cache.Invalidate(ctx, cache.AllStudentsPattern())
		return
	}
	for _, id := range ids {
		s.cache.Invalidate(ctx, cache.StudentPattern(id))
	}
}

func (s *CourseService) checkTeacher(ctx context.Context, teacherID *int64) error {
	if teacherID == nil {
		return nil
	}
	user, err := s.users.FindByID(ctx, *teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fieldError("teacher_id", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *teacherID))
		}
		return internal(err, "failed to load teacher")
	}
	if !user.HasGroup(models.GroupTeachers) {
		return fieldError("teacher_id", "User is not a teacher.")
	}
	return nil
}

func (s *CourseService) writeError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fieldError("code", "course with this code already exists.")
	}
	return internal(err, message)
}

func (s *CourseService) reload(ctx context.Context, id int64, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return projection.Record{}, internal(err, "failed to reload course")
	}
	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionCourseWrite, "course", id, map[string]interface{}{"code": course.Code, "teacher_id": course.TeacherID}, meta)
	return dto.CourseSchema.Read(*course), nil
}
