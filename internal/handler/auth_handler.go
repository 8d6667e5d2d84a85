package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/service"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.TokenPair, error)
	Logout(ctx context.Context, refresh string, caller *models.JWTClaims, meta service.RequestMeta) error
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Obtain token pair
// @Description Authenticate by username and password, sent form-encoded or as JSON
// @Tags Authentication
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenPair
// @Failure 400 {object} appErrors.Error
// @Failure 401 {object} appErrors.Error
// @Router /api/token/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Refresh godoc
// @Summary Rotate refresh token
// @Description Exchange a refresh token for a new pair; the old refresh token is revoked
// @Tags Authentication
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenPair
// @Failure 401 {object} appErrors.Error
// @Router /api/token/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh payload"))
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Revoke refresh token
// @Tags Authentication
// @Accept json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 204
// @Failure 401 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/token/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.RefreshTokenRequest
	if err := c.ShouldBind(&req); err != nil || req.Refresh == "" {
		response.Error(c, appErrors.WithFields(map[string][]string{"refresh": {"This field is required."}}, err))
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.Refresh, claims, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Me godoc
// @Summary Current user profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.UserProfile
// @Failure 401 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/user/me/ [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.ProfileSchema.Read(*user))
}
