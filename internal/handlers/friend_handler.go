package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/interfaces"
	"github.com/heartlink/heartlink/internal/middleware"
)

// FriendHandler serves the friend-request workflow.
type FriendHandler struct {
	friends interfaces.FriendService
}

func NewFriendHandler(friends interfaces.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

type friendRequestBody struct {
	RecipientID string `json:"recipient_id"`
}

type friendResponseBody struct {
	Accept bool `json:"accept"`
}

// SendRequest handles POST /api/friends/requests.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body").WithDetails(err.Error()))
		return
	}

	request, err := h.friends.SendRequest(c.Request.Context(), middleware.UserID(c), req.RecipientID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListRequests handles GET /api/friends/requests.
func (h *FriendHandler) ListRequests(c *gin.Context) {
	requests, err := h.friends.ListRequests(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Respond handles POST /api/friends/requests/:id/respond.
func (h *FriendHandler) Respond(c *gin.Context) {
	var req friendResponseBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body").WithDetails(err.Error()))
		return
	}

	request, err := h.friends.Respond(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Accept)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Friends handles GET /api/friends.
func (h *FriendHandler) Friends(c *gin.Context) {
	friends, err := h.friends.Friends(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends, "count": len(friends)})
}
