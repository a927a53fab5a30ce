package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/interfaces"
	"github.com/heartlink/heartlink/internal/middleware"
	"github.com/heartlink/heartlink/internal/scoring"
	"github.com/heartlink/heartlink/internal/services"
)

// UserHandler serves profile reads and writes plus the pairwise
// compatibility endpoint.
type UserHandler struct {
	users interfaces.UserService
}

func NewUserHandler(users interfaces.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe handles PUT /api/users/me. The body is a full profile; id,
// email and role come from the stored record, not the caller.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	current, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	var update services.UserProfile
	if err := c.ShouldBindJSON(&update); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body").WithDetails(err.Error()))
		return
	}

	update.ID = current.ID
	update.Email = current.Email
	update.Role = current.Role

	profile, err := h.users.UpdateProfile(c.Request.Context(), &update)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Compatibility handles GET /api/users/:id/compatibility: the detailed
// score between the caller and the named user.
func (h *UserHandler) Compatibility(c *gin.Context) {
	otherID := c.Param("id")
	userID := middleware.UserID(c)
	if otherID == userID {
		c.Error(apperrors.NewValidationError("id", "compatibility with yourself is not a thing"))
		return
	}

	viewer, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	other, err := h.users.GetByID(c.Request.Context(), otherID)
	if err != nil {
		c.Error(err)
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"compatibility":    scoring.DetailedCompatibility(viewer, other, now),
		"mutual_interests": scoring.MutualInterests(viewer, other),
		"bonus_score":      scoring.BonusCompatibility(viewer, other),
	})
}
