package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// TrackerService wraps the monthly tracker and tracker-book endpoints.
type TrackerService struct {
	client *Client
}

// NewTrackerService creates a TrackerService over the given gateway.
func NewTrackerService(client *Client) *TrackerService {
	return &TrackerService{client: client}
}

// Create creates a tracker for a (user, month, year).
// A duplicate surfaces as [shared.ErrConflict], distinguishable from other failures.
func (s *TrackerService) Create(ctx context.Context, req models.CreateTrackerRequest) (*models.MonthlyTracker, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var tracker models.MonthlyTracker
	if err := s.client.post(ctx, "/api/monthly-tracker", req, &tracker); err != nil {
		return nil, err
	}
	return &tracker, nil
}

// ByMonth looks up a user's tracker for a month and year.
//
// Absence is a normal outcome, not an error: the second return value reports
// whether a tracker exists. Only genuine failures produce a non-nil error.
func (s *TrackerService) ByMonth(ctx context.Context, userID int64, month, year int) (*models.MonthlyTracker, bool, error) {
	query := url.Values{
		"month": {strconv.Itoa(month)},
		"year":  {strconv.Itoa(year)},
	}

	var tracker models.MonthlyTracker
	err := s.client.get(ctx, fmt.Sprintf("/api/monthly-tracker/user/%d/month", userID), query, &tracker)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &tracker, true, nil
}

// ByUser retrieves all of a user's trackers.
func (s *TrackerService) ByUser(ctx context.Context, userID int64) ([]models.MonthlyTracker, error) {
	var trackers []models.MonthlyTracker
	if err := s.client.get(ctx, fmt.Sprintf("/api/monthly-tracker/user/%d", userID), nil, &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

// Progress retrieves the server-computed progress for a tracker.
func (s *TrackerService) Progress(ctx context.Context, trackerID int64) (*models.TrackerProgress, error) {
	var progress models.TrackerProgress
	if err := s.client.get(ctx, fmt.Sprintf("/api/monthly-tracker/%d/progress", trackerID), nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// UpdateGoal changes a tracker's target book count.
func (s *TrackerService) UpdateGoal(ctx context.Context, trackerID int64, newTarget int) (*models.MonthlyTracker, error) {
	if newTarget <= 0 {
		return nil, fmt.Errorf("%w: goal must be a positive number", shared.ErrInvalidInput)
	}

	query := url.Values{"newTarget": {strconv.Itoa(newTarget)}}
	var tracker models.MonthlyTracker
	if err := s.client.put(ctx, fmt.Sprintf("/api/monthly-tracker/%d/goal", trackerID), query, nil, &tracker); err != nil {
		return nil, err
	}
	return &tracker, nil
}

// Delete removes a tracker and its book associations.
func (s *TrackerService) Delete(ctx context.Context, trackerID int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/monthly-tracker/%d", trackerID), nil, nil)
}

// Books retrieves the tracker-book associations for a tracker.
func (s *TrackerService) Books(ctx context.Context, trackerID int64) ([]models.MonthlyTrackerBook, error) {
	var books []models.MonthlyTrackerBook
	if err := s.client.get(ctx, fmt.Sprintf("/api/monthly-tracker-books/tracker/%d", trackerID), nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// AddBook associates a UserBook with a tracker.
// A duplicate membership surfaces as [shared.ErrConflict].
func (s *TrackerService) AddBook(ctx context.Context, req models.AddTrackerBookRequest) (*models.MonthlyTrackerBook, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var book models.MonthlyTrackerBook
	if err := s.client.post(ctx, "/api/monthly-tracker-books", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// AddBooks associates several UserBooks with a tracker in one call.
func (s *TrackerService) AddBooks(ctx context.Context, req models.BulkTrackerBookRequest) (*models.BulkTrackerBookResponse, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var response models.BulkTrackerBookResponse
	if err := s.client.post(ctx, "/api/monthly-tracker-books/bulk", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ContainsBook reports whether a UserBook is already associated with a tracker.
func (s *TrackerService) ContainsBook(ctx context.Context, trackerID, userBookID int64) (bool, error) {
	var contains bool
	path := fmt.Sprintf("/api/monthly-tracker-books/tracker/%d/contains/%d", trackerID, userBookID)
	if err := s.client.get(ctx, path, nil, &contains); err != nil {
		return false, err
	}
	return contains, nil
}

// CompleteBook marks a tracker-book as completed and returns the server's
// representation. Completion is terminal; the backend exposes no reverse call.
func (s *TrackerService) CompleteBook(ctx context.Context, trackerBookID int64) (*models.MonthlyTrackerBook, error) {
	var book models.MonthlyTrackerBook
	if err := s.client.put(ctx, fmt.Sprintf("/api/monthly-tracker-books/%d/complete", trackerBookID), nil, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// RemoveBook removes a tracker-book association. The underlying UserBook and
// its shelf are unaffected.
func (s *TrackerService) RemoveBook(ctx context.Context, trackerBookID int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/api/monthly-tracker-books/%d", trackerBookID), nil, nil)
}
