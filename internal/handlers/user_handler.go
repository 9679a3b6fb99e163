package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile godoc
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} handlers.Response
// @Failure      404 {object} handlers.Response
// @Router       /api/users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary      Update the authenticated user's profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body models.ProfileUpdateRequest true "Profile fields"
// @Success      200 {object} handlers.Response
// @Failure      400 {object} handlers.Response
// @Failure      409 {object} handlers.Response
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := currentUserID(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	log.Printf("[user][profile] updated user=%d", userID)
	respondData(c, http.StatusOK, user)
}
