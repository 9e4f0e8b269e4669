package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/shared"
)

// TrackerState describes what the workflow holds for the displayed month.
type TrackerState int

const (
	// NoTracker means the displayed month has no tracker yet. This is a
	// normal state, not a failure.
	NoTracker TrackerState = iota
	// TrackerActive means a tracker exists and its progress and book list
	// are loaded.
	TrackerActive
)

// TrackerWorkflow manages the single monthly tracker the user is viewing,
// plus its associated books and server-computed progress.
//
// Progress always comes from the backend; the workflow never recomputes the
// percentage locally.
type TrackerWorkflow struct {
	trackers *services.TrackerService
	logger   *log.Logger

	mu       sync.RWMutex
	month    int
	year     int
	tracker  *models.MonthlyTracker
	progress *models.TrackerProgress
	books    []models.MonthlyTrackerBook
}

// NewTrackerWorkflow creates a TrackerWorkflow positioned on the current month.
func NewTrackerWorkflow(trackers *services.TrackerService, logger *log.Logger) *TrackerWorkflow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	month, year := CurrentMonth()
	return &TrackerWorkflow{trackers: trackers, logger: logger, month: month, year: year}
}

// LoadForMonth fetches the tracker for (userID, month, year) and, when one
// exists, its progress and book list. A month with no tracker resolves to the
// NoTracker state without surfacing an error.
func (w *TrackerWorkflow) LoadForMonth(ctx context.Context, userID int64, month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", shared.ErrInvalidArgument, month)
	}

	tracker, found, err := w.trackers.ByMonth(ctx, userID, month, year)
	if err != nil {
		w.logger.Error("failed to load tracker", "month", month, "year", year, "err", err)
		return err
	}

	if !found {
		w.mu.Lock()
		w.month, w.year = month, year
		w.tracker, w.progress, w.books = nil, nil, nil
		w.mu.Unlock()
		return nil
	}

	progress, err := w.trackers.Progress(ctx, tracker.ID)
	if err != nil {
		w.logger.Error("failed to load tracker progress", "trackerID", tracker.ID, "err", err)
		return err
	}

	books, err := w.trackers.Books(ctx, tracker.ID)
	if err != nil {
		w.logger.Error("failed to load tracker books", "trackerID", tracker.ID, "err", err)
		return err
	}

	w.mu.Lock()
	w.month, w.year = month, year
	w.tracker, w.progress, w.books = tracker, progress, books
	w.mu.Unlock()
	return nil
}

// Create creates a tracker for the displayed month. The goal must be a
// positive integer; anything else is rejected before any network call. A
// tracker that already exists for the month surfaces as [shared.ErrConflict],
// distinguishable from other failures, and leaves local state unchanged.
func (w *TrackerWorkflow) Create(ctx context.Context, userID int64, goal int) (*models.MonthlyTracker, error) {
	if goal <= 0 {
		return nil, fmt.Errorf("%w: monthly goal must be a positive number of books", shared.ErrInvalidInput)
	}

	w.mu.RLock()
	month, year := w.month, w.year
	w.mu.RUnlock()

	tracker, err := w.trackers.Create(ctx, models.CreateTrackerRequest{
		UserID:      userID,
		Year:        year,
		Month:       month,
		MonthlyGoal: goal,
	})
	if err != nil {
		w.logger.Error("failed to create tracker", "month", month, "year", year, "err", err)
		return nil, err
	}

	progress, err := w.trackers.Progress(ctx, tracker.ID)
	if err != nil {
		w.logger.Error("failed to load tracker progress", "trackerID", tracker.ID, "err", err)
		return nil, err
	}

	w.mu.Lock()
	w.tracker = tracker
	w.progress = progress
	w.books = nil
	w.mu.Unlock()
	return tracker, nil
}

// CandidateBooks filters a library down to the entries that can still be
// added to the displayed tracker: books already read and books already in the
// tracker are excluded before anything is offered to the user.
func (w *TrackerWorkflow) CandidateBooks(library []models.UserBook) []models.UserBook {
	w.mu.RLock()
	tracked := make(map[int64]bool, len(w.books))
	for _, tb := range w.books {
		tracked[tb.UserBook.ID] = true
	}
	w.mu.RUnlock()

	var candidates []models.UserBook
	for _, book := range library {
		if book.Shelf == models.ShelfRead || tracked[book.ID] {
			continue
		}
		candidates = append(candidates, book)
	}
	return candidates
}

// AddBook associates a UserBook with the active tracker. Books already in the
// tracker are rejected client-side without a network call; the server remains
// the final arbiter and its conflict answer stays distinguishable.
func (w *TrackerWorkflow) AddBook(ctx context.Context, userBook models.UserBook) (*models.MonthlyTrackerBook, error) {
	w.mu.RLock()
	tracker := w.tracker
	var already bool
	for _, tb := range w.books {
		if tb.UserBook.ID == userBook.ID {
			already = true
			break
		}
	}
	w.mu.RUnlock()

	if tracker == nil {
		return nil, fmt.Errorf("%w: no tracker for the displayed month", shared.ErrNotFound)
	}
	if already {
		return nil, fmt.Errorf("%w: book is already in this month's tracker", shared.ErrConflict)
	}
	if userBook.Shelf == models.ShelfRead {
		return nil, fmt.Errorf("%w: book is already read", shared.ErrInvalidInput)
	}

	book, err := w.trackers.AddBook(ctx, models.AddTrackerBookRequest{
		MonthlyTrackerID: tracker.ID,
		UserBookID:       userBook.ID,
	})
	if err != nil {
		w.logger.Error("failed to add tracker book", "userBookID", userBook.ID, "err", err)
		return nil, err
	}

	w.mu.Lock()
	w.books = append(w.books, *book)
	w.mu.Unlock()

	w.refreshProgress(ctx)
	return book, nil
}

// ToggleCompletion marks a tracker-book complete. Completion is
// one-directional: calling it on an already-completed entry is a no-op with no
// network call. The local entry is marked optimistically for responsiveness,
// then replaced by the server's representation; if the call fails the
// optimistic mark is reverted.
func (w *TrackerWorkflow) ToggleCompletion(ctx context.Context, trackerBookID int64) error {
	w.mu.Lock()
	idx := -1
	for i := range w.books {
		if w.books[i].ID == trackerBookID {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: tracker book %d", shared.ErrNotFound, trackerBookID)
	}
	if w.books[idx].IsCompleted {
		w.mu.Unlock()
		return nil
	}
	w.books[idx].IsCompleted = true
	w.mu.Unlock()

	book, err := w.trackers.CompleteBook(ctx, trackerBookID)
	if err != nil {
		w.logger.Error("failed to complete tracker book", "trackerBookID", trackerBookID, "err", err)
		w.mu.Lock()
		for i := range w.books {
			if w.books[i].ID == trackerBookID {
				w.books[i].IsCompleted = false
				break
			}
		}
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	for i := range w.books {
		if w.books[i].ID == trackerBookID {
			w.books[i] = *book
			break
		}
	}
	w.mu.Unlock()

	w.refreshProgress(ctx)
	return nil
}

// RemoveBook removes a tracker-book association after server confirmation.
// The underlying UserBook and its shelf are unaffected.
func (w *TrackerWorkflow) RemoveBook(ctx context.Context, trackerBookID int64) error {
	if err := w.trackers.RemoveBook(ctx, trackerBookID); err != nil {
		w.logger.Error("failed to remove tracker book", "trackerBookID", trackerBookID, "err", err)
		return err
	}

	w.mu.Lock()
	for i := range w.books {
		if w.books[i].ID == trackerBookID {
			w.books = append(w.books[:i], w.books[i+1:]...)
			break
		}
	}
	w.mu.Unlock()

	w.refreshProgress(ctx)
	return nil
}

// UpdateGoal changes the active tracker's target book count.
func (w *TrackerWorkflow) UpdateGoal(ctx context.Context, newTarget int) (*models.MonthlyTracker, error) {
	w.mu.RLock()
	tracker := w.tracker
	w.mu.RUnlock()
	if tracker == nil {
		return nil, fmt.Errorf("%w: no tracker for the displayed month", shared.ErrNotFound)
	}

	updated, err := w.trackers.UpdateGoal(ctx, tracker.ID, newTarget)
	if err != nil {
		w.logger.Error("failed to update goal", "trackerID", tracker.ID, "err", err)
		return nil, err
	}

	w.mu.Lock()
	w.tracker = updated
	w.mu.Unlock()

	w.refreshProgress(ctx)
	return updated, nil
}

// Delete removes the active tracker and resets the month to the NoTracker state.
func (w *TrackerWorkflow) Delete(ctx context.Context) error {
	w.mu.RLock()
	tracker := w.tracker
	w.mu.RUnlock()
	if tracker == nil {
		return fmt.Errorf("%w: no tracker for the displayed month", shared.ErrNotFound)
	}

	if err := w.trackers.Delete(ctx, tracker.ID); err != nil {
		w.logger.Error("failed to delete tracker", "trackerID", tracker.ID, "err", err)
		return err
	}

	w.mu.Lock()
	w.tracker, w.progress, w.books = nil, nil, nil
	w.mu.Unlock()
	return nil
}

// refreshProgress refetches server-computed progress after a mutation.
// Best-effort: a failure keeps the previous (stale) progress and is only logged,
// since the mutation itself already succeeded.
func (w *TrackerWorkflow) refreshProgress(ctx context.Context) {
	w.mu.RLock()
	tracker := w.tracker
	w.mu.RUnlock()
	if tracker == nil {
		return
	}

	progress, err := w.trackers.Progress(ctx, tracker.ID)
	if err != nil {
		w.logger.Warn("failed to refresh progress", "trackerID", tracker.ID, "err", err)
		return
	}

	w.mu.Lock()
	w.progress = progress
	w.mu.Unlock()
}

// State reports whether the displayed month has a tracker.
func (w *TrackerWorkflow) State() TrackerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.tracker == nil {
		return NoTracker
	}
	return TrackerActive
}

// Month returns the displayed (month, year).
func (w *TrackerWorkflow) Month() (int, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.month, w.year
}

// Tracker returns a copy of the active tracker, or nil in the NoTracker state.
func (w *TrackerWorkflow) Tracker() *models.MonthlyTracker {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.tracker == nil {
		return nil
	}
	tracker := *w.tracker
	return &tracker
}

// Progress returns a copy of the server-computed progress, or nil.
func (w *TrackerWorkflow) Progress() *models.TrackerProgress {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.progress == nil {
		return nil
	}
	progress := *w.progress
	return &progress
}

// Books returns a copy of the tracker's book list.
func (w *TrackerWorkflow) Books() []models.MonthlyTrackerBook {
	w.mu.RLock()
	defer w.mu.RUnlock()
	books := make([]models.MonthlyTrackerBook, len(w.books))
	copy(books, w.books)
	return books
}

// PrevMonth steps one month back; January of year Y yields December of Y-1.
func PrevMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// NextMonth steps one month forward; December of year Y yields January of Y+1.
func NextMonth(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

// CurrentMonth returns the wall-clock (month, year).
func CurrentMonth() (int, int) {
	now := time.Now()
	return int(now.Month()), now.Year()
}

// IsCurrentMonth reports whether (month, year) is the wall-clock month.
func IsCurrentMonth(month, year int) bool {
	m, y := CurrentMonth()
	return month == m && year == y
}
