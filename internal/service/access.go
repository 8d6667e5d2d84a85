package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type courseFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// ownedCourse loads a course and checks that caller is its assigned teacher.
func ownedCourse(ctx context.Context, courses courseFinder, courseID int64, caller *models.JWTClaims) (*models.Course, error) {
	course, err := courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !teaches(course, caller) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You are not the assigned teacher for this course.")
	}
	return course, nil
}

func teaches(course *models.Course, caller *models.JWTClaims) bool {
	return caller != nil && course.TeacherID != nil && *course.TeacherID == caller.UserID && caller.HasGroup(models.GroupTeachers)
}

func internal(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func fieldError(field, message string) error {
	return appErrors.WithFields(map[string][]string{field: {message}}, nil)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit stores an audit row; failures are logged and never surface to the caller.
func recordAudit(ctx context.Context, repo auditWriter, logger *zap.Logger, caller *models.JWTClaims, action, resource string, resourceID int64, values interface{}, meta RequestMeta) {
	if repo == nil || caller == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		logger.Warn("failed to encode audit values", zap.String("action", action), zap.Error(err))
		payload = nil
	}
	uid := caller.UserID
	rid := strconv.FormatInt(resourceID, 10)
	if err := repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &uid,
		Action:     action,
		Resource:   resource,
		ResourceID: &rid,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
