package models

import "time"

type TeamRole string

const (
	RoleOwner  TeamRole = "owner"
	RoleMember TeamRole = "member"
)

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamRef is the allow-listed team shape embedded in task views.
type TeamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (t *Team) Ref() TeamRef {
	return TeamRef{ID: t.ID, Name: t.Name}
}

// TeamMember is the join record granting a user a role within a team.
// (team_id, user_id) is unique.
type TeamMember struct {
	ID       int64     `json:"id"`
	TeamID   int64     `json:"team_id"`
	UserID   int64     `json:"user_id"`
	Role     TeamRole  `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberView is a member row joined with the user's allow-listed fields.
type MemberView struct {
	UserRef
	Role     TeamRole  `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamView is the response shape for a team: owner reference, members and
// the caller's own role.
type TeamView struct {
	Team
	Owner    *UserRef     `json:"owner,omitempty"`
	Members  []MemberView `json:"members"`
	UserRole TeamRole     `json:"user_role,omitempty"`
}

type TeamCreateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type TeamUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}
