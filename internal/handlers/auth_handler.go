package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type AuthHandler struct {
	users services.UserService
	auth  services.AuthService
}

func NewAuthHandler(users services.UserService, auth services.AuthService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

type authPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body models.RegisterRequest true "Registration data"
// @Success      201 {object} handlers.Response
// @Failure      400 {object} handlers.Response
// @Failure      409 {object} handlers.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		log.Printf("[auth][register] token for user %d: %v", user.ID, err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	log.Printf("[auth][register] user=%d email=%s", user.ID, user.Email)
	respondData(c, http.StatusCreated, authPayload{Token: token, User: user})
}

// Login godoc
// @Summary      Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body models.LoginRequest true "Credentials"
// @Success      200 {object} handlers.Response
// @Failure      401 {object} handlers.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if user == nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		log.Printf("[auth][login] token for user %d: %v", user.ID, err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	log.Printf("[auth][login] user=%d", user.ID)
	respondData(c, http.StatusOK, authPayload{Token: token, User: user})
}

// Logout godoc
// @Summary      Log out the current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} handlers.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// tokens are stateless; the client discards its copy
	respondMessage(c, http.StatusOK, "Logged out successfully")
}

// Me godoc
// @Summary      Get the authenticated user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} handlers.Response
// @Failure      401 {object} handlers.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}
