package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/installdesk-backend/internal/http/response"
	"github.com/yungbote/installdesk-backend/internal/services"
)

type MessageHandler struct {
	bot services.ChatBotService
}

func NewMessageHandler(bot services.ChatBotService) *MessageHandler {
	return &MessageHandler{bot: bot}
}

// POST /api/messages
func (h *MessageHandler) Receive(c *gin.Context) {
	var in services.Activity
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_activity", err)
		return
	}
	replies, err := h.bot.Handle(c.Request.Context(), &in)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"activities": replies})
}

// GET /api/messages
func (h *MessageHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "Bot is running")
}
