// package tasks implements multi-step operations against the BookBuddy API.
//
// The core abstraction is Engine, which orchestrates bulk tracker membership
// and full account dumps. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/shared"
)

// BookAddResult represents the outcome of adding a single book to a tracker.
type BookAddResult struct {
	Book  models.UserBook            // Candidate that was submitted
	Added *models.MonthlyTrackerBook // Created association (nil on failure)
	Error error                      // Error if the add failed
}

// BulkAddResult contains all data from a bulk tracker-membership operation.
type BulkAddResult struct {
	TrackerID    int64           // Target tracker
	Requested    int             // Candidates submitted
	Results      []BookAddResult // Individual outcomes
	SuccessCount int             // Number of successful adds
	FailedCount  int             // Number of failed adds
}

// DumpResult contains everything fetched for a full account dump.
type DumpResult struct {
	Health    any              // Backend health report
	Profile   any              // Account identity
	Library   any              // Full UserBook set
	Reviews   any              // Reviews written by the user
	Trackers  any              // All monthly trackers
	GoalBooks map[int64]any    // Tracker books keyed by tracker ID
	Errors    []EndpointResult // Failed endpoint fetches
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpData is the JSON shape written by the dump command.
type DumpData struct {
	Health    any           `json:"health"`
	Profile   any           `json:"profile,omitempty"`
	Library   any           `json:"library,omitempty"`
	Reviews   any           `json:"reviews,omitempty"`
	Trackers  any           `json:"trackers,omitempty"`
	GoalBooks map[int64]any `json:"goalBooks,omitempty"`
	Errors    []any         `json:"errors,omitempty"`
}

// Engine defines the long-running operations exposed to the CLI and TUI.
type Engine interface {
	// BulkAdd associates a set of UserBooks with a tracker, preferring the
	// bulk endpoint and falling back to rate-limited per-book adds.
	BulkAdd(ctx context.Context, progress chan<- ProgressUpdate, trackerID int64, books []models.UserBook, opts BulkAddOpts) (*BulkAddResult, error)

	// Dump fetches the user's complete account state: health, profile,
	// library, reviews, trackers and their books.
	Dump(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*DumpResult, error)
}

// AccountEngine implements Engine over the domain services.
type AccountEngine struct {
	client    *services.Client
	users     *services.UserService
	userbooks *services.UserBookService
	reviews   *services.ReviewService
	trackers  *services.TrackerService
}

// NewAccountEngine creates an AccountEngine with the provided services.
func NewAccountEngine(client *services.Client, users *services.UserService, userbooks *services.UserBookService, reviews *services.ReviewService, trackers *services.TrackerService) *AccountEngine {
	return &AccountEngine{
		client:    client,
		users:     users,
		userbooks: userbooks,
		reviews:   reviews,
		trackers:  trackers,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *AccountEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BulkAddOpts contains configuration for bulk tracker adds.
type BulkAddOpts struct {
	RateLimit float64 // Requests per second for the per-book fallback (default: 5)
}

// BulkAdd associates the given UserBooks with a tracker.
//
// Books on the read shelf are filtered out before anything is sent. The bulk
// endpoint is tried first; when it is unavailable or rejected the engine falls
// back to rate-limited per-book adds so partial progress survives individual
// conflicts.
func (e *AccountEngine) BulkAdd(ctx context.Context, progress chan<- ProgressUpdate, trackerID int64, books []models.UserBook, opts BulkAddOpts) (*BulkAddResult, error) {
	if e.trackers == nil {
		return nil, fmt.Errorf("%w: tracker service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	var candidates []models.UserBook
	for _, book := range books {
		if book.Shelf == models.ShelfRead {
			continue
		}
		candidates = append(candidates, book)
	}

	result := &BulkAddResult{TrackerID: trackerID, Requested: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	ids := make([]int64, len(candidates))
	for i, book := range candidates {
		ids[i] = book.ID
	}

	e.sendProgress(progress, bulkSubmitUpdate(0, len(candidates)))

	bulk, err := e.trackers.AddBooks(ctx, models.BulkTrackerBookRequest{
		MonthlyTrackerID: trackerID,
		UserBookIDs:      ids,
	})
	if err == nil {
		added := make(map[int64]*models.MonthlyTrackerBook, len(bulk.Added))
		for i := range bulk.Added {
			added[bulk.Added[i].UserBook.ID] = &bulk.Added[i]
		}

		for _, book := range candidates {
			r := BookAddResult{Book: book, Added: added[book.ID]}
			if r.Added == nil {
				r.Error = fmt.Errorf("%w: book is already in this tracker", shared.ErrConflict)
				result.FailedCount++
			} else {
				result.SuccessCount++
			}
			result.Results = append(result.Results, r)
		}

		e.sendProgress(progress, bulkSubmitUpdate(len(candidates), len(candidates)))
		return result, nil
	}

	// Bulk route unavailable or rejected wholesale; add one at a time so a
	// single conflict cannot sink the rest.
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	for i, book := range candidates {
		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}

		e.sendProgress(progress, addBookUpdate(i+1, len(candidates), book))

		added, addErr := e.trackers.AddBook(ctx, models.AddTrackerBookRequest{
			MonthlyTrackerID: trackerID,
			UserBookID:       book.ID,
		})
		r := BookAddResult{Book: book, Added: added, Error: addErr}
		if addErr == nil {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, r)
	}

	return result, nil
}

// Dump fetches the user's complete account state.
//
// Endpoint failures are collected rather than aborting the dump; the returned
// error is non-nil only when nothing could be fetched at all.
func (e *AccountEngine) Dump(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*DumpResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{GoalBooks: make(map[int64]any)}
	steps := 5
	fetched := 0

	e.sendProgress(progress, dumpUpdate(FetchHealth, 1, steps))
	if health, err := e.client.Health(ctx); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "/api/health", Error: err})
	} else {
		result.Health = health
		fetched++
	}

	e.sendProgress(progress, dumpUpdate(FetchProfile, 2, steps))
	if profile, err := e.users.ByID(ctx, userID); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "/api/users", Error: err})
	} else {
		result.Profile = profile
		fetched++
	}

	e.sendProgress(progress, dumpUpdate(FetchLibrary, 3, steps))
	if library, err := e.userbooks.ForUser(ctx, userID); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "/api/userbooks", Error: err})
	} else {
		result.Library = library
		fetched++
	}

	e.sendProgress(progress, dumpUpdate(FetchReviews, 4, steps))
	if reviews, err := e.reviews.ByUser(ctx, userID); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "/api/reviews", Error: err})
	} else {
		result.Reviews = reviews
		fetched++
	}

	e.sendProgress(progress, dumpUpdate(FetchTrackers, 5, steps))
	trackers, err := e.trackers.ByUser(ctx, userID)
	if err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "/api/monthly-tracker", Error: err})
	} else {
		result.Trackers = trackers
		fetched++

		for _, tracker := range trackers {
			books, err := e.trackers.Books(ctx, tracker.ID)
			if err != nil {
				endpoint := fmt.Sprintf("/api/monthly-tracker-books/tracker/%d", tracker.ID)
				result.Errors = append(result.Errors, EndpointResult{Endpoint: endpoint, Error: err})
				continue
			}
			result.GoalBooks[tracker.ID] = books
		}
	}

	if fetched == 0 {
		return result, fmt.Errorf("%w: all dump endpoints failed", shared.ErrAPIRequest)
	}

	return result, nil
}
