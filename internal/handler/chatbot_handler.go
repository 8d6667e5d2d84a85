package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

type chatbotService interface {
	Ask(ctx context.Context, caller *models.JWTClaims, req dto.ChatbotQueryRequest) (*dto.ChatbotReply, error)
	History(ctx context.Context, caller *models.JWTClaims) ([]dto.ChatHistoryItem, error)
}

// ChatbotHandler exposes the student chatbot.
type ChatbotHandler struct {
	service chatbotService
}

// NewChatbotHandler constructs a ChatbotHandler.
func NewChatbotHandler(svc chatbotService) *ChatbotHandler {
	return &ChatbotHandler{service: svc}
}

// Query godoc
// @Summary Ask the course-content chatbot
// @Tags Chatbot
// @Accept json
// @Produce json
// @Param payload body dto.ChatbotQueryRequest true "Question"
// @Success 200 {object} dto.ChatbotReply
// @Failure 400 {object} appErrors.Error
// @Security BearerAuth
// @Router /api/chatbot/query/ [post]
func (h *ChatbotHandler) Query(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ChatbotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chatbot query"))
		return
	}
	reply, err := h.service.Ask(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply)
}

// History godoc
// @Summary Recent chatbot exchanges of the caller
// @Tags Chatbot
// @Produce json
// @Success 200 {array} dto.ChatHistoryItem
// @Security BearerAuth
// @Router /api/chatbot/history/ [get]
func (h *ChatbotHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.History(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}
