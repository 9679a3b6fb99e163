package models

import "time"

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never serialized
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`

	// optional binding for the Telegram notification mirror
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRef is the allow-listed user shape embedded in task/team/comment views.
type UserRef struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileUpdateRequest struct {
	FirstName      *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}
