package models

import (
	"encoding/json"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func IsAllowedTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func IsAllowedTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedByID int64        `json:"created_by_id"`
	AssignedTo  *int64       `json:"assigned_to_id,omitempty"`
	TeamID      *int64       `json:"team_id,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskView is the response shape: the task plus allow-listed references,
// assembled by the service from separate fetches.
type TaskView struct {
	Task
	Creator  *UserRef  `json:"creator,omitempty"`
	Assignee *UserRef  `json:"assignee,omitempty"`
	Team     *TeamRef  `json:"team,omitempty"`

	// populated on single-task fetch only
	Comments    []CommentView    `json:"comments,omitempty"`
	Attachments []AttachmentView `json:"attachments,omitempty"`
}

// TaskFilter defines the available parameters for filtering task lists.
type TaskFilter struct {
	Status     *TaskStatus
	AssignedTo *int64
	TeamID     *int64
	Search     string

	// when no other filter is set, restrict to tasks the caller
	// created or is assigned to
	Mine *int64
}

// Page carries validated pagination and sorting for task lists.
type Page struct {
	Number int
	Limit  int
	SortBy string // sanitized column name
	Desc   bool
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

type TaskCreateRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"` // RFC3339
	Priority    string  `json:"priority"`
	AssignedTo  *int64  `json:"assigned_to_id"`
	TeamID      *int64  `json:"team_id"`
}

// OptionalInt64 tells an absent JSON field apart from an explicit null, so
// PATCH-style updates can clear a value.
type OptionalInt64 struct {
	Set   bool
	Valid bool
	Value int64
}

func (o *OptionalInt64) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Ptr returns the value as *int64, nil when the field was null.
func (o OptionalInt64) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// SomeInt64 builds a present, non-null OptionalInt64.
func SomeInt64(v int64) OptionalInt64 {
	return OptionalInt64{Set: true, Valid: true, Value: v}
}

// NullInt64 builds a present but null OptionalInt64.
func NullInt64() OptionalInt64 {
	return OptionalInt64{Set: true}
}

type TaskUpdateRequest struct {
	Title       *string       `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string       `json:"description"`
	DueDate     *string       `json:"due_date"` // RFC3339, empty string clears
	Status      *string       `json:"status"`
	Priority    *string       `json:"priority"`
	AssignedTo  OptionalInt64 `json:"assigned_to_id"` // null clears the assignee
}
