package services

import (
	"context"
	"log"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

type UserService interface {
	// Register creates the account. The welcome email is best-effort and
	// never fails registration.
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	// Authenticate returns (nil, nil) on unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, req models.ProfileUpdateRequest) (*models.User, error)
}

type userService struct {
	users repositories.UserRepository
	auth  AuthService
	email EmailService // may be nil when email is disabled
}

func NewUserService(users repositories.UserRepository, auth AuthService, email EmailService) UserService {
	return &userService{users: users, auth: auth, email: email}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.users.Store(ctx, user); err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
			log.Printf("[user][register][warn] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, nil
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, req models.ProfileUpdateRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.users.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.Conflict("Email already in use")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.TelegramChatID != nil {
		if *req.TelegramChatID == 0 {
			user.TelegramChatID = nil
		} else {
			user.TelegramChatID = req.TelegramChatID
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
