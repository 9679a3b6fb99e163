package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// TeamReport godoc
// @Summary      Download a PDF summary of a team's tasks
// @Tags         reports
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id path int true "Team ID"
// @Success      200 {file} file
// @Failure      403 {object} handlers.Response
// @Router       /api/teams/{id}/report [get]
func (h *ReportHandler) TeamReport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, filename, err := h.reports.TeamReport(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", out)
}
