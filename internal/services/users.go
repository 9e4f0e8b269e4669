package services

import (
	"context"
	"fmt"

	"github.com/bookbuddy/bbx/internal/models"
)

// UserService wraps the identity endpoints.
type UserService struct {
	client *Client
}

// NewUserService creates a UserService over the given gateway.
func NewUserService(client *Client) *UserService {
	return &UserService{client: client}
}

// Login authenticates with a username or email and password.
// Bad credentials surface as [shared.ErrUnauthorized].
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.client.post(ctx, "/api/users/login", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, req models.UserRequest) (*models.User, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.client.post(ctx, "/api/users/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByID retrieves a user by ID.
func (s *UserService) ByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.client.get(ctx, fmt.Sprintf("/api/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByUsername retrieves a user by username.
func (s *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.client.get(ctx, "/api/users/username/"+username, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update replaces a user's profile and credentials.
func (s *UserService) Update(ctx context.Context, id int64, req models.UserRequest) (*models.User, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.client.put(ctx, fmt.Sprintf("/api/users/%d", id), nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/users/%d", id), nil, nil)
}
