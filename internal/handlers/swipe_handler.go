package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/interfaces"
	"github.com/heartlink/heartlink/internal/middleware"
)

// SwipeHandler serves the swipe surface: swiping, the candidate feed,
// matches, stats and the like inboxes.
type SwipeHandler struct {
	swipes  interfaces.SwipeService
	feed    interfaces.FeedService
	matches interfaces.MatchService
}

func NewSwipeHandler(swipes interfaces.SwipeService, feed interfaces.FeedService, matches interfaces.MatchService) *SwipeHandler {
	return &SwipeHandler{swipes: swipes, feed: feed, matches: matches}
}

type swipeRequest struct {
	TargetID string             `json:"target_id"`
	Action   string             `json:"action"`
	LikeType *database.LikeType `json:"like_type,omitempty"`
}

// Swipe handles POST /api/swipe/swipe.
func (h *SwipeHandler) Swipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body").WithDetails(err.Error()))
		return
	}

	result, err := h.swipes.Swipe(c.Request.Context(), middleware.UserID(c), req.TargetID, database.SwipeAction(req.Action), req.LikeType)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Candidates handles GET /api/swipe/candidates. Pagination facts ride
// in X-Total-Count and X-Has-More headers as well as the body.
func (h *SwipeHandler) Candidates(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 0)

	feed, err := h.feed.Candidates(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(feed.TotalCount))
	c.Header("X-Has-More", strconv.FormatBool(feed.HasMore))
	c.JSON(http.StatusOK, feed)
}

// Matches handles GET /api/swipe/matches.
func (h *SwipeHandler) Matches(c *gin.Context) {
	matches, err := h.matches.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// DetailedMatches handles GET /api/swipe/matches/detailed.
func (h *SwipeHandler) DetailedMatches(c *gin.Context) {
	matches, err := h.matches.ListDetailed(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// Ranked handles GET /api/swipe/ranked.
func (h *SwipeHandler) Ranked(c *gin.Context) {
	result, err := h.feed.RankedMatches(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats handles GET /api/swipe/stats.
func (h *SwipeHandler) Stats(c *gin.Context) {
	stats, err := h.swipes.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Received handles GET /api/swipe/received.
func (h *SwipeHandler) Received(c *gin.Context) {
	pending, err := h.swipes.PendingLikes(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": pending, "count": len(pending)})
}

// Liked handles GET /api/swipe/liked.
func (h *SwipeHandler) Liked(c *gin.Context) {
	liked, err := h.swipes.LikedUsers(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": liked, "count": len(liked)})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
