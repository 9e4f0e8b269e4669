package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// SearchService wraps the free-text catalog search endpoint.
//
// Queries pass through a rate limiter so rapid-fire input (interactive search
// in the TUI) cannot hammer the backend; the limiter plays the role the SPA's
// debounce did.
type SearchService struct {
	client  *Client
	limiter *rate.Limiter
}

// NewSearchService creates a SearchService limited to ratePerSecond queries
// (default 2/s when non-positive).
func NewSearchService(client *Client, ratePerSecond float64) *SearchService {
	if ratePerSecond <= 0 {
		ratePerSecond = 2.0
	}
	return &SearchService{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// Search queries the catalog. Page is 1-based; limit defaults to 20 and is
// capped at 100.
func (s *SearchService) Search(ctx context.Context, query string, page, limit int) (*models.SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", shared.ErrTimeout, err)
	}

	params := url.Values{
		"q":     {query},
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}

	var response models.SearchResponse
	if err := s.client.get(ctx, "/api/search", params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
