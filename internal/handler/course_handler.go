package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
	"github.com/noah-isme/academic-dashboard/internal/service"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

// entityWriter is implemented by the course, assignment and grade services.
type entityWriter interface {
	Create(ctx context.Context, body []byte, caller *models.JWTClaims, meta service.RequestMeta) (projection.Record, error)
	Update(ctx context.Context, id int64, body []byte, caller *models.JWTClaims, meta service.RequestMeta) (projection.Record, error)
}

// WriteHandler exposes POST and PATCH for an entity whose body goes through its write view.
type WriteHandler struct {
	service entityWriter
}

// NewWriteHandler constructs a WriteHandler.
func NewWriteHandler(svc entityWriter) *WriteHandler {
	return &WriteHandler{service: svc}
}

// Create godoc
// @Summary Create course, assignment or grade
// @Description Courses require staff; assignments and grades require the course's teacher
// @Tags Writes
// @Accept json
// @Produce json
// @Param payload body object true "Write view"
// @Success 201 {object} object
// @Failure 400 {object} appErrors.Error
// @Failure 403 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/courses/ [post]
// @Router /api/assignments/ [post]
// @Router /api/grades/ [post]
func (h *WriteHandler) Create(c *gin.Context) {
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
	rec, err := h.service.Create(c.Request.Context(), body, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Update godoc
// @Summary Partially update course, assignment or grade
// @Tags Writes
// @Accept json
// @Produce json
// @Param id path int true "Id"
// @Param payload body object true "Partial write view"
// @Success 200 {object} object
// @Failure 400 {object} appErrors.Error
// @Failure 403 {object} appErrors.Error
// @Failure 404 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/courses/{id}/ [patch]
// @Router /api/assignments/{id}/ [patch]
// @Router /api/grades/{id}/ [patch]
func (h *WriteHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := readBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rec, err := h.service.Update(c.Request.Context(), id, body, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec)
}
