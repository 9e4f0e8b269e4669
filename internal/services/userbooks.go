package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// UserBookService wraps the library membership endpoints.
type UserBookService struct {
	client *Client
}

// NewUserBookService creates a UserBookService over the given gateway.
func NewUserBookService(client *Client) *UserBookService {
	return &UserBookService{client: client}
}

// ForUser retrieves a user's full UserBook set.
func (s *UserBookService) ForUser(ctx context.Context, userID int64) ([]models.UserBook, error) {
	var books []models.UserBook
	if err := s.client.get(ctx, fmt.Sprintf("/api/userbooks/user/%d", userID), nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ByID retrieves a single UserBook.
func (s *UserBookService) ByID(ctx context.Context, id int64) (*models.UserBook, error) {
	var book models.UserBook
	if err := s.client.get(ctx, fmt.Sprintf("/api/userbooks/%d", id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Add attaches an existing catalog entry to a user's library.
// A duplicate (user, book) pair surfaces as [shared.ErrConflict].
func (s *UserBookService) Add(ctx context.Context, req models.UserBookRequest) (*models.UserBook, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var book models.UserBook
	if err := s.client.post(ctx, "/api/userbooks", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// AddFromSearch adds a search result to a user's library, creating the catalog
// entry on the backend when needed. The server decides the shelf default
// (want-to-read) and all timestamps.
func (s *UserBookService) AddFromSearch(ctx context.Context, req models.AddBookFromSearchRequest) (*models.UserBook, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var book models.UserBook
	if err := s.client.post(ctx, "/api/userbooks/add-from-search", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateShelf moves a UserBook to a new shelf and returns the server's
// representation, which carries any server-computed completion timestamp.
func (s *UserBookService) UpdateShelf(ctx context.Context, id int64, shelf models.Shelf) (*models.UserBook, error) {
	if !shelf.Valid() {
		return nil, fmt.Errorf("%w: unknown shelf %q", shared.ErrInvalidInput, shelf)
	}

	query := url.Values{"shelf": {string(shelf)}}
	var book models.UserBook
	if err := s.client.put(ctx, fmt.Sprintf("/api/userbooks/%d/shelf", id), query, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Remove deletes a UserBook from the library.
func (s *UserBookService) Remove(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/userbooks/%d", id), nil, nil)
}
