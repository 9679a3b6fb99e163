package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/files"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type CollaborationHandler struct {
	collab         services.CollaborationService
	maxUploadBytes int64
}

func NewCollaborationHandler(collab services.CollaborationService, maxUploadBytes int64) *CollaborationHandler {
	return &CollaborationHandler{collab: collab, maxUploadBytes: maxUploadBytes}
}

// AddComment godoc
// @Summary      Comment on a task
// @Tags         comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path int                          true "Task ID"
// @Param        input body models.CommentCreateRequest true "Comment"
// @Success      201 {object} handlers.Response
// @Failure      404 {object} handlers.Response
// @Router       /api/tasks/{id}/comments [post]
func (h *CollaborationHandler) AddComment(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.collab.AddComment(c.Request.Context(), currentUserID(c), taskID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

// ListComments godoc
// @Summary      List a task's comments, oldest first
// @Tags         comments
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} handlers.Response
// @Router       /api/tasks/{id}/comments [get]
func (h *CollaborationHandler) ListComments(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	views, err := h.collab.ListComments(c.Request.Context(), taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, views)
}

// DeleteComment godoc
// @Summary      Delete own comment
// @Tags         comments
// @Security     BearerAuth
// @Produce      json
// @Param        id        path int true "Task ID"
// @Param        commentId path int true "Comment ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/tasks/{id}/comments/{commentId} [delete]
func (h *CollaborationHandler) DeleteComment(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	if err := h.collab.DeleteComment(c.Request.Context(), currentUserID(c), taskID, commentID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Comment deleted successfully")
}

// Upload godoc
// @Summary      Attach a file to a task
// @Tags         attachments
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     int  true "Task ID"
// @Param        file formData file true "File to upload"
// @Success      201 {object} handlers.Response
// @Failure      400 {object} handlers.Response
// @Router       /api/tasks/{id}/attachments [post]
func (h *CollaborationHandler) Upload(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if header.Size > h.maxUploadBytes {
		respondError(c, http.StatusBadRequest, "File too large")
		return
	}
	mimetype := header.Header.Get("Content-Type")
	if !files.AllowedType(mimetype) {
		respondError(c, http.StatusBadRequest, "File type not allowed")
		return
	}

	src, err := header.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer src.Close()

	view, err := h.collab.Upload(c.Request.Context(), currentUserID(c), taskID, src, header.Filename, mimetype)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

// ListAttachments godoc
// @Summary      List a task's attachments, newest first
// @Tags         attachments
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} handlers.Response
// @Router       /api/tasks/{id}/attachments [get]
func (h *CollaborationHandler) ListAttachments(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	views, err := h.collab.ListAttachments(c.Request.Context(), taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, views)
}

// Download godoc
// @Summary      Download an attachment
// @Tags         attachments
// @Security     BearerAuth
// @Produce      octet-stream
// @Param        id           path int true "Task ID"
// @Param        attachmentId path int true "Attachment ID"
// @Success      200 {file} file
// @Failure      404 {object} handlers.Response
// @Router       /api/tasks/{id}/attachments/{attachmentId}/download [get]
func (h *CollaborationHandler) Download(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramID(c, "attachmentId")
	if !ok {
		return
	}
	attachment, path, err := h.collab.ResolveDownload(c.Request.Context(), taskID, attachmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.FileAttachment(path, attachment.Filename)
}

// DeleteAttachment godoc
// @Summary      Delete own attachment
// @Tags         attachments
// @Security     BearerAuth
// @Produce      json
// @Param        id           path int true "Task ID"
// @Param        attachmentId path int true "Attachment ID"
// @Success      200 {object} handlers.Response
// @Failure      403 {object} handlers.Response
// @Router       /api/tasks/{id}/attachments/{attachmentId} [delete]
func (h *CollaborationHandler) DeleteAttachment(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramID(c, "attachmentId")
	if !ok {
		return
	}
	if err := h.collab.DeleteAttachment(c.Request.Context(), currentUserID(c), taskID, attachmentID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Attachment deleted successfully")
}
