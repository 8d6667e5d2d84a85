package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/middleware"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
	"github.com/noah-isme/academic-dashboard/internal/service"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

type studentCollections interface {
	MyCourses(ctx context.Context, caller *models.JWTClaims) (json.RawMessage, bool, error)
	MyAssignments(ctx context.Context, caller *models.JWTClaims) (json.RawMessage, bool, error)
	MyGrades(ctx context.Context, caller *models.JWTClaims) (json.RawMessage, bool, error)
}

type submissionService interface {
	Submit(ctx context.Context, body []byte, caller *models.JWTClaims, meta service.RequestMeta) (projection.Record, error)
}

// StudentHandler serves the caller-scoped student collections.
type StudentHandler struct {
	collections studentCollections
	submissions submissionService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(collections studentCollections, submissions submissionService) *StudentHandler {
	return &StudentHandler{collections: collections, submissions: submissions}
}

// MyCourses godoc
// @Summary Enrollments of the caller
// @Tags Student
// @Produce json
// @Success 200 {array} dto.EnrollmentRead
// @Failure 401 {object} appErrors.Error
// @Failure 403 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/my-courses/ [get]
func (h *StudentHandler) MyCourses(c *gin.Context) {
	h.serve(c, h.collections.MyCourses)
}

// MyAssignments godoc
// @Summary Upcoming assignments of the caller, earliest due first
// @Tags Student
// @Produce json
// @Success 200 {array} dto.AssignmentRead
// @Security BearerAuth
// @Router /api/my-assignments/ [get]
func (h *StudentHandler) MyAssignments(c *gin.Context) {
	h.serve(c, h.collections.MyAssignments)
}

// MyGrades godoc
// @Summary Grades of the caller
// @Tags Student
// @Produce json
// @Success 200 {array} dto.GradeRead
// @Security BearerAuth
// @Router /api/my-grades/ [get]
func (h *StudentHandler) MyGrades(c *gin.Context) {
	h.serve(c, h.collections.MyGrades)
}

// Submit godoc
// @Summary Submit an assignment
// @Description The student is always the caller; grading fields are ignored
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body object true "{\"assignment\": 1}"
// @Success 201 {object} dto.GradeRead
// @Failure 400 {object} appErrors.Error
// @Failure 409 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/my-submissions/ [post]
func (h *StudentHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	body, err := readBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rec, err := h.submissions.Submit(c.Request.Context(), body, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

func (h *StudentHandler) serve(c *gin.Context, load func(context.Context, *models.JWTClaims) (json.RawMessage, bool, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, hit, err := load(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, payload)
}
