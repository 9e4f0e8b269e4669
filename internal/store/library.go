package store

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/shared"
)

// LibraryStore is the in-memory source of truth for the signed-in user's
// UserBook collection.
//
// Mutations send the request first and apply the server's returned
// representation on success; a failed call leaves the collection untouched.
// Two rapid independent mutations on the same entry carry no ordering
// guarantee — the last server response to arrive wins, which can show a
// transient inconsistency. That trade-off is deliberate; the store adds no
// locking across network calls.
type LibraryStore struct {
	session   *SessionStore
	userbooks *services.UserBookService
	logger    *log.Logger

	mu          sync.RWMutex
	books       []models.UserBook
	refreshGen  uint64
	initialized bool
}

// NewLibraryStore creates a LibraryStore bound to the given session.
func NewLibraryStore(session *SessionStore, userbooks *services.UserBookService, logger *log.Logger) *LibraryStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryStore{session: session, userbooks: userbooks, logger: logger}
}

// Refresh fetches the full UserBook set for the current user. With no user
// signed in it clears the collection and succeeds.
//
// Safe to call repeatedly and concurrently: each call takes a generation
// number before fetching and only the newest generation may install its
// response, so overlapping refreshes cannot interleave into mixed state.
func (s *LibraryStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshGen++
	gen := s.refreshGen
	s.mu.Unlock()

	user := s.session.Current()
	if user == nil {
		s.mu.Lock()
		if gen == s.refreshGen {
			s.books = nil
		}
		s.initialized = true
		s.mu.Unlock()
		return nil
	}

	books, err := s.userbooks.ForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to fetch library", "user", user.Username, "err", err)
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if gen == s.refreshGen {
		s.books = books
	}
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// AddFromSearch adds a search result to the library. Requires a signed-in
// user; the server's returned UserBook (shelf defaulted to want-to-read,
// timestamps included) is appended on success. On failure the collection is
// left unchanged and the error propagates.
func (s *LibraryStore) AddFromSearch(ctx context.Context, req models.AddBookFromSearchRequest) (*models.UserBook, error) {
	user := s.session.Current()
	if user == nil {
		return nil, shared.ErrNotAuthenticated
	}
	req.UserID = user.ID

	book, err := s.userbooks.AddFromSearch(ctx, req)
	if err != nil {
		s.logger.Error("failed to add book", "title", req.Title, "err", err)
		return nil, err
	}

	s.mu.Lock()
	s.books = append(s.books, *book)
	s.mu.Unlock()
	return book, nil
}

// UpdateShelf moves a UserBook to a new shelf and replaces the local entry
// with the server's representation, keeping server-computed fields (the
// completion timestamp in particular) authoritative.
func (s *LibraryStore) UpdateShelf(ctx context.Context, userBookID int64, shelf models.Shelf) (*models.UserBook, error) {
	book, err := s.userbooks.UpdateShelf(ctx, userBookID, shelf)
	if err != nil {
		s.logger.Error("failed to update shelf", "userBookID", userBookID, "err", err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.books {
		if s.books[i].ID == userBookID {
			s.books[i] = *book
			break
		}
	}
	s.mu.Unlock()
	return book, nil
}

// Remove deletes a UserBook; the local entry goes away only after the server
// confirms the deletion.
func (s *LibraryStore) Remove(ctx context.Context, userBookID int64) error {
	if err := s.userbooks.Remove(ctx, userBookID); err != nil {
		s.logger.Error("failed to remove book", "userBookID", userBookID, "err", err)
		return err
	}

	s.mu.Lock()
	for i := range s.books {
		if s.books[i].ID == userBookID {
			s.books = append(s.books[:i], s.books[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// InLibrary reports whether any entry in the current collection carries the
// given Open Library ID. Used to disable duplicate "add" actions.
func (s *LibraryStore) InLibrary(openLibraryID string) bool {
	if openLibraryID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, book := range s.books {
		if book.Book.OpenLibraryID == openLibraryID {
			return true
		}
	}
	return false
}

// Books returns a copy of the current collection.
func (s *LibraryStore) Books() []models.UserBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := make([]models.UserBook, len(s.books))
	copy(books, s.books)
	return books
}

// ByShelf returns a copy of the entries on one shelf.
func (s *LibraryStore) ByShelf(shelf models.Shelf) []models.UserBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var books []models.UserBook
	for _, book := range s.books {
		if book.Shelf == shelf {
			books = append(books, book)
		}
	}
	return books
}

// Get returns a copy of the entry with the given ID.
func (s *LibraryStore) Get(userBookID int64) (models.UserBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, book := range s.books {
		if book.ID == userBookID {
			return book, true
		}
	}
	return models.UserBook{}, false
}

// Initialized reports whether at least one Refresh has completed.
func (s *LibraryStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}
