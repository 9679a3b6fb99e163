package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type TeamHandler struct {
	teams services.TeamService
}

func NewTeamHandler(teams services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Create godoc
// @Summary      Create a team
// @Tags         teams
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body models.TeamCreateRequest true "Team data"
// @Success      201 {object} handlers.Response
// @Failure      400 {object} handlers.Response
// @Router       /api/teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req models.TeamCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.teams.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

// List godoc
// @Summary      List teams the caller belongs to
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} handlers.Response
// @Router       /api/teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	views, err := h.teams.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, views)
}

// Get godoc
// @Summary      Get a team with its members
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Team ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Failure      404 {object} handlers.Response
// @Router       /api/teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.teams.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// Update godoc
// @Summary      Update a team
// @Tags         teams
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int                      true "Team ID"
// @Param        input body models.TeamUpdateRequest true "Fields to update"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/teams/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.TeamUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.teams.Update(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// Delete godoc
// @Summary      Delete a team
// @Description  Members are removed and team tasks are detached, not deleted.
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Team ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/teams/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.teams.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Team deleted successfully")
}

// AddMember godoc
// @Summary      Add a user to a team
// @Tags         teams
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int                     true "Team ID"
// @Param        input body models.AddMemberRequest true "User to add"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Failure      409 {object} handlers.Response
// @Router       /api/teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.teams.AddMember(c.Request.Context(), currentUserID(c), id, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// RemoveMember godoc
// @Summary      Remove a user from a team
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Param        id     path int true "Team ID"
// @Param        userId path int true "User ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/teams/{id}/members/{userId} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if err := h.teams.RemoveMember(c.Request.Context(), currentUserID(c), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Member removed successfully")
}

// ListTasks godoc
// @Summary      List a team's tasks
// @Tags         teams
// @Security     BearerAuth
// @Produce      json
// @Param        id     path  int    true  "Team ID"
// @Param        status query string false "Filter by status"
// @Param        page   query int    false "Page number"
// @Param        limit  query int    false "Page size"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/teams/{id}/tasks [get]
func (h *TeamHandler) ListTasks(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var status *models.TaskStatus
	if v := c.Query("status"); v != "" {
		s := models.TaskStatus(v)
		if !models.IsAllowedTaskStatus(s) {
			respondError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &s
	}

	page := parsePage(c)
	views, pagination, err := h.teams.ListTasks(c.Request.Context(), currentUserID(c), id, status, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, taskListPayload{Tasks: views, Pagination: pagination})
}
