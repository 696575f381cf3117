package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/villageofwisdom/genius-backend/internal/services"
)

type ConversationHandler struct {
	conversations services.ConversationService
}

func NewConversationHandler(conversations services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Get returns the transcript and current section of an owned conversation;
// page loads use it before the channel joins.
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conv, err := h.conversations.GetOwned(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}
