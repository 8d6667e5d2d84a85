package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/middleware"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/service"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// pathID parses a numeric path parameter. Anything else cannot name a row and is a 404.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "Not found.")
	}
	return id, nil
}

// maxJSONBody caps the write endpoints' request bodies.
const maxJSONBody int64 = 1 << 20

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, appErrors.New("BODY_TOO_LARGE", http.StatusRequestEntityTooLarge, "Request body is too large.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read request body")
	}
	return body, nil
}
