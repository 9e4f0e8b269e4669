package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/shared"
)

// Storage is the key-value persistence the session survives in between runs.
// The SQLite-backed repositories.SessionRepository implements it; tests use an
// in-memory map.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is a process-local Storage for when no database is available.
// Sessions stored here do not survive a restart.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Persisted keys. The notification key keeps the name the web client used.
const (
	userKey          = "user"
	notificationsKey = "bookbuddy_notifications"
)

// SessionStore owns the authenticated user for the lifetime of the process
// and persists it under fixed keys in Storage. Logout clears every persisted key.
type SessionStore struct {
	users   *services.UserService
	storage Storage
	logger  *log.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewSessionStore creates a SessionStore over the given user service and storage.
func NewSessionStore(users *services.UserService, storage Storage, logger *log.Logger) *SessionStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SessionStore{users: users, storage: storage, logger: logger}
}

// Load restores a persisted session, if any. A corrupt stored value is
// discarded rather than surfaced; the user just has to sign in again.
func (s *SessionStore) Load() error {
	raw, ok, err := s.storage.Get(userKey)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding corrupt persisted session", "err", err)
		return s.storage.Delete(userKey)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the signed-in user, or nil when signed out.
func (s *SessionStore) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// SignedIn reports whether a user is signed in.
func (s *SessionStore) SignedIn() bool {
	return s.Current() != nil
}

// Login authenticates and persists the session.
func (s *SessionStore) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	user, err := s.users.Login(ctx, models.LoginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	})
	if err != nil {
		return nil, err
	}

	if err := s.setUser(user); err != nil {
		return nil, err
	}

	s.logger.Info("signed in", "username", user.Username)
	return user, nil
}

// Signup registers a new account and signs it in.
func (s *SessionStore) Signup(ctx context.Context, req models.UserRequest) (*models.User, error) {
	user, err := s.users.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.setUser(user); err != nil {
		return nil, err
	}

	s.logger.Info("account created", "username", user.Username)
	return user, nil
}

// Logout tears the session down, clearing every persisted key.
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Delete(userKey); err != nil {
		return err
	}
	return s.storage.Delete(notificationsKey)
}

// UpdateProfile replaces the account's profile and re-persists the server's
// representation.
func (s *SessionStore) UpdateProfile(ctx context.Context, req models.UserRequest) (*models.User, error) {
	current := s.Current()
	if current == nil {
		return nil, shared.ErrNotAuthenticated
	}

	user, err := s.users.Update(ctx, current.ID, req)
	if err != nil {
		return nil, err
	}

	if err := s.setUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before submitting the change.
// A wrong current password surfaces as [shared.ErrUnauthorized], distinct from
// any failure of the update itself.
func (s *SessionStore) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	current := s.Current()
	if current == nil {
		return shared.ErrNotAuthenticated
	}

	_, err := s.users.Login(ctx, models.LoginRequest{
		UsernameOrEmail: current.Username,
		Password:        currentPassword,
	})
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return fmt.Errorf("%w: current password is incorrect", shared.ErrUnauthorized)
		}
		return err
	}

	_, err = s.UpdateProfile(ctx, models.UserRequest{
		FirstName: current.FirstName,
		LastName:  current.LastName,
		Username:  current.Username,
		Email:     current.Email,
		Password:  newPassword,
	})
	return err
}

// DeleteAccount removes the account on the backend and tears down the session.
func (s *SessionStore) DeleteAccount(ctx context.Context) error {
	current := s.Current()
	if current == nil {
		return shared.ErrNotAuthenticated
	}

	if err := s.users.Delete(ctx, current.ID); err != nil {
		return err
	}

	return s.Logout()
}

// NotificationsEnabled reads the persisted notification preference (default false).
func (s *SessionStore) NotificationsEnabled() bool {
	raw, ok, err := s.storage.Get(notificationsKey)
	if err != nil {
		s.logger.Warn("failed to read notification preference", "err", err)
		return false
	}
	return ok && raw == "true"
}

// SetNotificationsEnabled persists the notification preference.
func (s *SessionStore) SetNotificationsEnabled(enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.storage.Set(notificationsKey, value)
}

func (s *SessionStore) setUser(user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.storage.Set(userKey, string(raw)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	u := *user
	s.user = &u
	s.mu.Unlock()
	return nil
}
