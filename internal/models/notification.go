package models

import "time"

// Notification event types pushed over the socket channel.
const (
	NotifyTaskAssigned   = "task_assigned"
	NotifyTaskUpdated    = "task_updated"
	NotifyTaskCompleted  = "task_completed"
	NotifyNewComment     = "new_comment"
	NotifyTeamInvitation = "team_invitation"
)

// Notification is the payload delivered to a bound connection. The Router
// stamps Timestamp at delivery time.
type Notification struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TaskID    int64     `json:"task_id,omitempty"`
	TeamID    int64     `json:"team_id,omitempty"`
	CommentID int64     `json:"comment_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
