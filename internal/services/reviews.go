package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bookbuddy/bbx/internal/models"
)

// ReviewService wraps the review endpoints.
//
// The backend enforces at most one review per (user, book); [ReviewService.Upsert]
// resolves create-vs-update on the client by checking for an existing review
// before submitting.
type ReviewService struct {
	client *Client
}

// NewReviewService creates a ReviewService over the given gateway.
func NewReviewService(client *Client) *ReviewService {
	return &ReviewService{client: client}
}

// Create submits a new review.
func (s *ReviewService) Create(ctx context.Context, req models.ReviewRequest) (*models.ReviewResponse, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var review models.ReviewResponse
	if err := s.client.post(ctx, "/api/reviews", req, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Update replaces an existing review.
func (s *ReviewService) Update(ctx context.Context, reviewID int64, req models.ReviewRequest) (*models.ReviewResponse, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var review models.ReviewResponse
	if err := s.client.put(ctx, fmt.Sprintf("/api/reviews/%d", reviewID), nil, req, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Upsert creates or updates the caller's review of a book, picking the path by
// whether a review under username already exists for the book.
func (s *ReviewService) Upsert(ctx context.Context, username string, req models.ReviewRequest) (*models.ReviewResponse, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.ByBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	for _, review := range existing {
		if review.Username == username {
			return s.Update(ctx, review.ID, req)
		}
	}

	return s.Create(ctx, req)
}

// ByBook retrieves all reviews for a book.
func (s *ReviewService) ByBook(ctx context.Context, bookID int64) ([]models.ReviewResponse, error) {
	var reviews []models.ReviewResponse
	if err := s.client.get(ctx, fmt.Sprintf("/api/reviews/book/%d", bookID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ByUser retrieves all reviews written by a user.
func (s *ReviewService) ByUser(ctx context.Context, userID int64) ([]models.ReviewResponse, error) {
	var reviews []models.ReviewResponse
	if err := s.client.get(ctx, fmt.Sprintf("/api/reviews/user/%d", userID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageRating retrieves the server-computed average rating for a book.
func (s *ReviewService) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	var avg float64
	if err := s.client.get(ctx, fmt.Sprintf("/api/reviews/book/%d/average", bookID), nil, &avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// Delete removes a review on behalf of its author.
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID int64) error {
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	return s.client.delete(ctx, fmt.Sprintf("/api/reviews/%d", reviewID), query, nil)
}
