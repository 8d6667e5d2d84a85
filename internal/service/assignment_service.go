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
	"github.com/noah-isme/academic-dashboard/pkg/cache"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, a *models.Assignment) error
	Update(ctx context.Context, a *models.Assignment) error
}

// AssignmentService lets a course's teacher create and edit its assignments.
type AssignmentService struct {
	repo    assignmentRepository
	courses courseFinder
	cache   *CacheService
	audit   auditWriter
	logger  *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, courses courseFinder, cacheSvc *CacheService, audit auditWriter, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, courses: courses, cache: cacheSvc, audit: audit, logger: logger}
}

// Create stores a new assignment in a course taught by the caller.
func (s *AssignmentService) Create(ctx context.Context, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	assignment := models.Assignment{TotalPoints: models.DefaultTotalPoints}
	if err := dto.AssignmentSchema.Decode(body, &assignment, false); err != nil {
		return projection.Record{}, validationError(err, "invalid assignment payload")
	}
	if err := s.checkCourse(ctx, assignment.CourseID, caller); err != nil {
		return projection.Record{}, err
	}
	if err := s.repo.Create(ctx, &assignment); err != nil {
		return projection.Record{}, internal(err, "failed to create assignment")
	}
	return s.reload(ctx, assignment.ID, caller, meta)
}

// Update applies a partial write. Moving an assignment requires owning both courses.
func (s *AssignmentService) Update(ctx context.Context, id int64, body []byte, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return projection.Record{}, internal(err, "failed to load assignment")
	}
	if _, err := ownedCourse(ctx, s.courses, assignment.CourseID, caller); err != nil {
		return projection.Record{}, err
	}
	original := assignment.CourseID
	if err := dto.AssignmentSchema.Decode(body, assignment, true); err != nil {
		return projection.Record{}, validationError(err, "invalid assignment payload")
	}
	if assignment.CourseID != original {
		if err := s.checkCourse(ctx, assignment.CourseID, caller); err != nil {
			return projection.Record{}, err
		}
	}
	if err := s.repo.Update(ctx, assignment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return projection.Record{}, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return projection.Record{}, internal(err, "failed to update assignment")
	}
	return s.reload(ctx, assignment.ID, caller, meta)
}

// checkCourse reports a missing course as a field error rather than a 404.
func (s *AssignmentService) checkCourse(ctx context.Context, courseID int64, caller *models.JWTClaims) error {
	_, err := ownedCourse(ctx, s.courses, courseID, caller)
	if errors.Is(err, appErrors.ErrNotFound) {
		return fieldError("course", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", courseID))
	}
	return err
}

func (s *AssignmentService) reload(ctx context.Context, id int64, caller *models.JWTClaims, meta RequestMeta) (projection.Record, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return projection.Record{}, internal(err, "failed to reload assignment")
	}
	s.cache.Invalidate(ctx, cache.AllStudentsPattern())
	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionAssignWrite, "assignment", id, map[string]interface{}{"course_id": assignment.CourseID, "title": assignment.Title}, meta)
	return dto.AssignmentSchema.Read(*assignment), nil
}
