package services

import (
	"context"
	"fmt"

	"github.com/bookbuddy/bbx/internal/models"
)

// CatalogService wraps the shared book catalog endpoints.
// Catalog entries are immutable from the client's perspective except for
// explicit edit calls.
type CatalogService struct {
	client *Client
}

// NewCatalogService creates a CatalogService over the given gateway.
func NewCatalogService(client *Client) *CatalogService {
	return &CatalogService{client: client}
}

// All retrieves every catalog entry.
func (s *CatalogService) All(ctx context.Context) ([]models.BookCatalog, error) {
	var books []models.BookCatalog
	if err := s.client.get(ctx, "/api/catalog", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ByID retrieves a catalog entry.
func (s *CatalogService) ByID(ctx context.Context, id int64) (*models.BookCatalog, error) {
	var book models.BookCatalog
	if err := s.client.get(ctx, fmt.Sprintf("/api/catalog/%d", id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Create adds a new catalog entry.
func (s *CatalogService) Create(ctx context.Context, req models.BookCatalogRequest) (*models.BookCatalog, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var book models.BookCatalog
	if err := s.client.post(ctx, "/api/catalog", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Update edits an existing catalog entry.
func (s *CatalogService) Update(ctx context.Context, id int64, req models.BookCatalogRequest) (*models.BookCatalog, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var book models.BookCatalog
	if err := s.client.put(ctx, fmt.Sprintf("/api/catalog/%d", id), nil, req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Delete removes a catalog entry.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/catalog/%d", id), nil, nil)
}
