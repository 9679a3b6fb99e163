package models

import "time"

// Comment is immutable except for deletion; listed oldest first.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentView struct {
	Comment
	Author *UserRef `json:"author,omitempty"`
}

type CommentCreateRequest struct {
	Content string `json:"content" binding:"required"`
}
