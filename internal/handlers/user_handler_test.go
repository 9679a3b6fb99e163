package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

type fakeUserService struct {
	user    *models.User
	err     error
	gotID   int64
	gotReq  models.ProfileUpdateRequest
	updated bool
}

func (s *fakeUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.user, s.err
}

func (s *fakeUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return s.user, s.err
}

func (s *fakeUserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.gotID = id
	return s.user, s.err
}

func (s *fakeUserService) UpdateProfile(ctx context.Context, id int64, req models.ProfileUpdateRequest) (*models.User, error) {
	s.gotID = id
	s.gotReq = req
	s.updated = true
	return s.user, s.err
}

func newUserRouter(svc *fakeUserService) *gin.Engine {
	r := gin.New()
	// stand-in for the auth middleware
	r.Use(func(c *gin.Context) {
		c.Set("user_id", int64(7))
		c.Next()
	})
	h := NewUserHandler(svc)
	r.GET("/api/users/profile", h.GetProfile)
	r.PUT("/api/users/profile", h.UpdateProfile)
	return r
}

func TestUserHandlerGetProfile(t *testing.T) {
	svc := &fakeUserService{user: &models.User{ID: 7, Email: "alice@example.com", FirstName: "Alice"}}
	r := newUserRouter(svc)

	w := do(r, http.MethodGet, "/api/users/profile", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	resp := parseEnvelope(t, w)
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if svc.gotID != 7 {
		t.Errorf("looked up user %d, want 7 from the auth context", svc.gotID)
	}
}

func TestUserHandlerGetProfileNotFound(t *testing.T) {
	svc := &fakeUserService{err: apperr.NotFound("User")}
	r := newUserRouter(svc)

	if w := do(r, http.MethodGet, "/api/users/profile", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUserHandlerUpdateProfile(t *testing.T) {
	svc := &fakeUserService{user: &models.User{ID: 7, Email: "alice@example.com"}}
	r := newUserRouter(svc)

	w := do(r, http.MethodPut, "/api/users/profile", gin.H{"first_name": "Alicia"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !svc.updated || svc.gotID != 7 {
		t.Errorf("updated=%v id=%d, want update for user 7", svc.updated, svc.gotID)
	}
	if svc.gotReq.FirstName == nil || *svc.gotReq.FirstName != "Alicia" {
		t.Errorf("FirstName = %v, want Alicia", svc.gotReq.FirstName)
	}
}
