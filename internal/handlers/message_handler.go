package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/interfaces"
	"github.com/heartlink/heartlink/internal/middleware"
)

// MessageHandler serves direct messages.
type MessageHandler struct {
	messaging interfaces.MessagingService
}

func NewMessageHandler(messaging interfaces.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

type sendMessageBody struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

// Send handles POST /api/messages/:userID.
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body").WithDetails(err.Error()))
		return
	}

	message, err := h.messaging.Send(c.Request.Context(), middleware.UserID(c), c.Param("userID"), req.Text, req.ImageURL)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// Conversation handles GET /api/messages/:userID.
func (h *MessageHandler) Conversation(c *gin.Context) {
	messages, err := h.messaging.Conversation(c.Request.Context(), middleware.UserID(c), c.Param("userID"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}
