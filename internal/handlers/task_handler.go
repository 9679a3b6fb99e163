package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type TaskHandler struct {
	tasks services.TaskService
}

func NewTaskHandler(tasks services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body models.TaskCreateRequest true "Task data"
// @Success      201 {object} handlers.Response
// @Failure      400 {object} handlers.Response
// @Failure      404 {object} handlers.Response
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req models.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.tasks.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

type taskListPayload struct {
	Tasks      []models.TaskView `json:"tasks"`
	Pagination models.Pagination `json:"pagination"`
}

// List godoc
// @Summary      List tasks
// @Description  Without filters the list is restricted to tasks the caller created or is assigned to.
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        status      query string false "Filter by status"
// @Param        assigned_to query int    false "Filter by assignee"
// @Param        team_id     query int    false "Filter by team"
// @Param        search      query string false "Search in title and description"
// @Param        page        query int    false "Page number"
// @Param        limit       query int    false "Page size"
// @Param        sortBy      query string false "Sort column"
// @Param        order       query string false "asc or desc"
// @Success      200 {object} handlers.Response
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var filter models.TaskFilter
	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !models.IsAllowedTaskStatus(status) {
			respondError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	if v := c.Query("assigned_to"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid assigned_to filter")
			return
		}
		filter.AssignedTo = &id
	}
	if v := c.Query("team_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid team_id filter")
			return
		}
		filter.TeamID = &id
	}
	filter.Search = c.Query("search")

	page := parsePage(c)
	views, pagination, err := h.tasks.List(c.Request.Context(), currentUserID(c), filter, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, taskListPayload{Tasks: views, Pagination: pagination})
}

// Get godoc
// @Summary      Get a task with comments and attachments
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} handlers.Response
// @Failure      404 {object} handlers.Response
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// Update godoc
// @Summary      Update a task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int                      true "Task ID"
// @Param        input body models.TaskUpdateRequest true "Fields to update"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Failure      409 {object} handlers.Response
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.tasks.Update(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Task deleted successfully")
}

// Complete godoc
// @Summary      Mark a task as completed
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/tasks/{id}/complete [patch]
func (h *TaskHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.tasks.Complete(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

type assignRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// Assign godoc
// @Summary      Assign a task to a user
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int                    true "Task ID"
// @Param        input body handlers.assignRequest true "Assignee"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/tasks/{id}/assign [patch]
func (h *TaskHandler) Assign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.tasks.Assign(c.Request.Context(), currentUserID(c), id, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}
