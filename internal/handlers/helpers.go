package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    any                `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: true, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// respondServiceError maps the apperr taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var vErr *apperr.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, Response{
			Success: false, Message: "Validation failed", Errors: vErr.Fields,
		})
	case errors.Is(err, apperr.ErrInvalid):
		respondError(c, http.StatusBadRequest, apperr.Message(err))
	case errors.Is(err, apperr.ErrNotFound):
		respondError(c, http.StatusNotFound, capitalize(err.Error()))
	case errors.Is(err, apperr.ErrForbidden):
		respondError(c, http.StatusForbidden, apperr.Message(err))
	case errors.Is(err, apperr.ErrConflict):
		respondError(c, http.StatusConflict, apperr.Message(err))
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// respondBindError turns gin binding failures into field-level errors.
func respondBindError(c *gin.Context, err error) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make([]apperr.FieldError, 0, len(vErrs))
		for _, fe := range vErrs {
			fields = append(fields, apperr.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: bindMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false, Message: "Validation failed", Errors: fields,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "Invalid request body")
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) int64 {
	v, _ := c.Get("user_id")
	id, _ := v.(int64)
	return id
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

var sortableTaskColumns = map[string]struct{}{
	"title": {}, "due_date": {}, "status": {}, "priority": {},
	"created_at": {}, "updated_at": {},
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// parsePage reads page/limit/sortBy/order query params, clamping limits and
// rejecting sort columns outside the allow-list.
func parsePage(c *gin.Context) models.Page {
	page := models.Page{Number: 1, Limit: defaultPageLimit, SortBy: "created_at", Desc: true}

	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		if n > maxPageLimit {
			n = maxPageLimit
		}
		page.Limit = n
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		if _, ok := sortableTaskColumns[sortBy]; ok {
			page.SortBy = sortBy
		}
	}
	if order := strings.ToLower(c.Query("order")); order == "asc" {
		page.Desc = false
	}
	return page
}
