package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

type contentDownloader interface {
	Download(ctx context.Context, id int64, token string, caller *models.JWTClaims) (*models.CourseContent, *os.File, error)
}

// ContentHandler streams uploaded course material through signed links.
type ContentHandler struct {
	service contentDownloader
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(svc contentDownloader) *ContentHandler {
	return &ContentHandler{service: svc}
}

// Download godoc
// @Summary Download course material
// @Tags Content
// @Produce octet-stream
// @Param id path int true "Content id"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} appErrors.Error
// @Failure 404 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/contents/{id}/download [get]
func (h *ContentHandler) Download(c *gin.Context) {
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
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Download link is invalid or has expired."))
		return
	}

	content, file, err := h.service.Download(c.Request.Context(), id, token, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.OriginalName))
	c.Header("Cache-Control", "private, no-store")
	c.DataFromReader(http.StatusOK, content.SizeBytes, content.MimeType, file, nil)
}
