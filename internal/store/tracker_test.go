package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// serveTracker wires the read endpoints for one active tracker.
func serveTracker(b *testBackend, tracker models.MonthlyTracker, books []models.MonthlyTrackerBook) {
	b.mux.HandleFunc("GET /api/monthly-tracker/user/1/month", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tracker)
	})
	b.mux.HandleFunc("GET /api/monthly-tracker/5/progress", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.TrackerProgress{
			TrackerID:   5,
			TargetBooks: tracker.TargetBooksNum,
			TotalBooks:  len(books),
			Month:       tracker.Month,
			Year:        tracker.Year,
		})
	})
	b.mux.HandleFunc("GET /api/monthly-tracker-books/tracker/5", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(books)
	})
}

func marchTracker() models.MonthlyTracker {
	return models.MonthlyTracker{
		ID:             5,
		Month:          "MARCH",
		Year:           "2026",
		TargetBooksNum: 4,
	}
}

func trackerBookFixture() []models.MonthlyTrackerBook {
	return []models.MonthlyTrackerBook{
		{
			ID:       50,
			UserBook: models.UserBook{ID: 10, Shelf: models.ShelfCurrentlyReading, Book: models.BookCatalog{Title: "Dune"}},
		},
		{
			ID:          51,
			IsCompleted: true,
			UserBook:    models.UserBook{ID: 11, Shelf: models.ShelfRead, Book: models.BookCatalog{Title: "Middlemarch"}},
		},
	}
}

func TestTrackerWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("load rejects an out-of-range month", func(t *testing.T) {
		b := newTestBackend(t)

		for _, month := range []int{0, 13, -1} {
			if err := b.tracker.LoadForMonth(ctx, 1, month, 2026); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("month %d: expected ErrInvalidArgument, got %v", month, err)
			}
		}
	})

	t.Run("a month without a tracker is not an error", func(t *testing.T) {
		b := newTestBackend(t)
		b.mux.HandleFunc("GET /api/monthly-tracker/user/1/month", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.tracker.State() != NoTracker {
			t.Error("expected NoTracker state")
		}
		month, year := b.tracker.Month()
		if month != 3 || year != 2026 {
			t.Errorf("expected displayed month 3/2026, got %d/%d", month, year)
		}
		if b.tracker.Tracker() != nil || b.tracker.Progress() != nil {
			t.Error("expected no tracker data")
		}
	})

	t.Run("load installs tracker, progress and books", func(t *testing.T) {
		b := newTestBackend(t)
		serveTracker(b, marchTracker(), trackerBookFixture())

		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.tracker.State() != TrackerActive {
			t.Error("expected TrackerActive state")
		}
		tracker := b.tracker.Tracker()
		if tracker == nil || tracker.Month != "MARCH" || tracker.Year != "2026" {
			t.Errorf("unexpected tracker: %+v", tracker)
		}
		progress := b.tracker.Progress()
		if progress == nil || progress.TotalBooks != 2 {
			t.Errorf("unexpected progress: %+v", progress)
		}
		if books := b.tracker.Books(); len(books) != 2 {
			t.Errorf("expected 2 tracker books, got %d", len(books))
		}
	})

	t.Run("create rejects a non-positive goal before any network call", func(t *testing.T) {
		b := newTestBackend(t)
		b.server.Close()

		for _, goal := range []int{0, -3} {
			if _, err := b.tracker.Create(ctx, 1, goal); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("goal %d: expected ErrInvalidInput, got %v", goal, err)
			}
		}
	})

	t.Run("create submits the displayed month and activates the tracker", func(t *testing.T) {
		b := newTestBackend(t)
		b.mux.HandleFunc("GET /api/monthly-tracker/user/1/month", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		b.mux.HandleFunc("POST /api/monthly-tracker", func(w http.ResponseWriter, r *http.Request) {
			var req models.CreateTrackerRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Month != 3 || req.Year != 2026 || req.MonthlyGoal != 4 {
				t.Errorf("unexpected create request: %+v", req)
			}
			json.NewEncoder(w).Encode(marchTracker())
		})
		b.mux.HandleFunc("GET /api/monthly-tracker/5/progress", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.TrackerProgress{TrackerID: 5, TargetBooks: 4})
		})

		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tracker, err := b.tracker.Create(ctx, 1, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tracker.ID != 5 {
			t.Errorf("unexpected tracker: %+v", tracker)
		}
		if b.tracker.State() != TrackerActive {
			t.Error("expected TrackerActive state")
		}
		if len(b.tracker.Books()) != 0 {
			t.Error("expected a fresh tracker to start with no books")
		}
	})

	t.Run("duplicate create surfaces as a distinguishable conflict", func(t *testing.T) {
		b := newTestBackend(t)
		b.mux.HandleFunc("POST /api/monthly-tracker", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		_, err := b.tracker.Create(ctx, 1, 4)
		if !errors.Is(err, shared.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
		if b.tracker.State() != NoTracker {
			t.Error("expected local state unchanged after conflict")
		}
	})

	t.Run("candidate books exclude read and already-tracked entries", func(t *testing.T) {
		b := newTestBackend(t)
		serveTracker(b, marchTracker(), trackerBookFixture())
		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		library := []models.UserBook{
			{ID: 10, Shelf: models.ShelfCurrentlyReading, Book: models.BookCatalog{Title: "Dune"}},
			{ID: 12, Shelf: models.ShelfWantToRead, Book: models.BookCatalog{Title: "Hyperion"}},
			{ID: 13, Shelf: models.ShelfRead, Book: models.BookCatalog{Title: "Emma"}},
		}
		candidates := b.tracker.CandidateBooks(library)
		if len(candidates) != 1 || candidates[0].ID != 12 {
			t.Errorf("expected only Hyperion as candidate, got %+v", candidates)
		}
	})

	t.Run("add book", func(t *testing.T) {
		setup := func(t *testing.T) *testBackend {
			b := newTestBackend(t)
			serveTracker(b, marchTracker(), trackerBookFixture())
			if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return b
		}

		t.Run("requires an active tracker", func(t *testing.T) {
			b := newTestBackend(t)
			_, err := b.tracker.AddBook(ctx, models.UserBook{ID: 12})
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("rejects a duplicate without a network call", func(t *testing.T) {
			b := setup(t)
			var calls atomic.Int32
			b.mux.HandleFunc("POST /api/monthly-tracker-books", func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})

			_, err := b.tracker.AddBook(ctx, models.UserBook{ID: 10, Shelf: models.ShelfCurrentlyReading})
			if !errors.Is(err, shared.ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
			if calls.Load() != 0 {
				t.Error("expected no network call for a local duplicate")
			}
		})

		t.Run("rejects a book already read", func(t *testing.T) {
			b := setup(t)
			_, err := b.tracker.AddBook(ctx, models.UserBook{ID: 13, Shelf: models.ShelfRead})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("appends the server's representation", func(t *testing.T) {
			b := setup(t)
			b.mux.HandleFunc("POST /api/monthly-tracker-books", func(w http.ResponseWriter, r *http.Request) {
				var req models.AddTrackerBookRequest
				json.NewDecoder(r.Body).Decode(&req)
				if req.MonthlyTrackerID != 5 || req.UserBookID != 12 {
					t.Errorf("unexpected request: %+v", req)
				}
				json.NewEncoder(w).Encode(models.MonthlyTrackerBook{
					ID:       52,
					UserBook: models.UserBook{ID: 12, Shelf: models.ShelfWantToRead},
				})
			})

			book, err := b.tracker.AddBook(ctx, models.UserBook{ID: 12, Shelf: models.ShelfWantToRead})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if book.ID != 52 {
				t.Errorf("unexpected tracker book: %+v", book)
			}
			if len(b.tracker.Books()) != 3 {
				t.Errorf("expected 3 tracker books, got %d", len(b.tracker.Books()))
			}
		})

		t.Run("server conflict stays distinguishable", func(t *testing.T) {
			b := setup(t)
			b.mux.HandleFunc("POST /api/monthly-tracker-books", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
			})

			_, err := b.tracker.AddBook(ctx, models.UserBook{ID: 12, Shelf: models.ShelfWantToRead})
			if !errors.Is(err, shared.ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
			if len(b.tracker.Books()) != 2 {
				t.Error("expected book list unchanged after server conflict")
			}
		})
	})

	t.Run("toggle completion", func(t *testing.T) {
		setup := func(t *testing.T) *testBackend {
			b := newTestBackend(t)
			serveTracker(b, marchTracker(), trackerBookFixture())
			if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return b
		}

		t.Run("unknown tracker book id", func(t *testing.T) {
			b := setup(t)
			if err := b.tracker.ToggleCompletion(ctx, 999); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("already-completed entry is a no-op without a network call", func(t *testing.T) {
			b := setup(t)
			var calls atomic.Int32
			b.mux.HandleFunc("PUT /api/monthly-tracker-books/51/complete", func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})

			if err := b.tracker.ToggleCompletion(ctx, 51); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calls.Load() != 0 {
				t.Error("expected no network call for a completed entry")
			}
		})

		t.Run("success installs the server's representation", func(t *testing.T) {
			b := setup(t)
			b.mux.HandleFunc("PUT /api/monthly-tracker-books/50/complete", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(models.MonthlyTrackerBook{
					ID:          50,
					IsCompleted: true,
					UserBook:    models.UserBook{ID: 10, Shelf: models.ShelfRead, CompletedAt: "2026-03-15T09:00:00"},
				})
			})

			if err := b.tracker.ToggleCompletion(ctx, 50); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			books := b.tracker.Books()
			if !books[0].IsCompleted {
				t.Error("expected entry marked completed")
			}
			if books[0].UserBook.CompletedAt != "2026-03-15T09:00:00" {
				t.Error("expected server-computed fields to replace the local entry")
			}
		})

		t.Run("failure reverts the optimistic mark", func(t *testing.T) {
			b := setup(t)
			b.mux.HandleFunc("PUT /api/monthly-tracker-books/50/complete", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})

			if err := b.tracker.ToggleCompletion(ctx, 50); err == nil {
				t.Fatal("expected an error")
			}
			if b.tracker.Books()[0].IsCompleted {
				t.Error("expected optimistic completion reverted")
			}
		})
	})

	t.Run("remove book keeps the shelf untouched locally", func(t *testing.T) {
		b := newTestBackend(t)
		serveTracker(b, marchTracker(), trackerBookFixture())
		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b.mux.HandleFunc("DELETE /api/monthly-tracker-books/50", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		if err := b.tracker.RemoveBook(ctx, 50); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		books := b.tracker.Books()
		if len(books) != 1 || books[0].ID != 51 {
			t.Errorf("expected only entry 51 to remain, got %+v", books)
		}
	})

	t.Run("update goal replaces the tracker", func(t *testing.T) {
		b := newTestBackend(t)
		serveTracker(b, marchTracker(), nil)
		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b.mux.HandleFunc("PUT /api/monthly-tracker/5/goal", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("newTarget"); got != "8" {
				t.Errorf("expected newTarget=8, got %q", got)
			}
			tracker := marchTracker()
			tracker.TargetBooksNum = 8
			json.NewEncoder(w).Encode(tracker)
		})

		updated, err := b.tracker.UpdateGoal(ctx, 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.TargetBooksNum != 8 {
			t.Errorf("unexpected tracker: %+v", updated)
		}
		if b.tracker.Tracker().TargetBooksNum != 8 {
			t.Error("expected local tracker replaced")
		}
	})

	t.Run("delete resets to the NoTracker state", func(t *testing.T) {
		b := newTestBackend(t)
		serveTracker(b, marchTracker(), trackerBookFixture())
		if err := b.tracker.LoadForMonth(ctx, 1, 3, 2026); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b.mux.HandleFunc("DELETE /api/monthly-tracker/5", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		if err := b.tracker.Delete(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.tracker.State() != NoTracker {
			t.Error("expected NoTracker state")
		}
		if len(b.tracker.Books()) != 0 {
			t.Error("expected book list cleared")
		}
	})

	t.Run("operations without a tracker", func(t *testing.T) {
		b := newTestBackend(t)

		if _, err := b.tracker.UpdateGoal(ctx, 5); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("UpdateGoal: expected ErrNotFound, got %v", err)
		}
		if err := b.tracker.Delete(ctx); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("Delete: expected ErrNotFound, got %v", err)
		}
	})
}

func TestMonthNavigation(t *testing.T) {
	cases := []struct {
		name                string
		month, year         int
		prevMonth, prevYear int
		nextMonth, nextYear int
	}{
		{"mid-year", 6, 2026, 5, 2026, 7, 2026},
		{"january wraps back", 1, 2026, 12, 2025, 2, 2026},
		{"december wraps forward", 12, 2026, 11, 2026, 1, 2027},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if m, y := PrevMonth(tc.month, tc.year); m != tc.prevMonth || y != tc.prevYear {
				t.Errorf("PrevMonth(%d, %d) = (%d, %d), expected (%d, %d)", tc.month, tc.year, m, y, tc.prevMonth, tc.prevYear)
			}
			if m, y := NextMonth(tc.month, tc.year); m != tc.nextMonth || y != tc.nextYear {
				t.Errorf("NextMonth(%d, %d) = (%d, %d), expected (%d, %d)", tc.month, tc.year, m, y, tc.nextMonth, tc.nextYear)
			}
		})
	}

	t.Run("current month is in range", func(t *testing.T) {
		month, year := CurrentMonth()
		if month < 1 || month > 12 {
			t.Errorf("month out of range: %d", month)
		}
		if year < 2020 {
			t.Errorf("implausible year: %d", year)
		}
		if !IsCurrentMonth(month, year) {
			t.Error("expected IsCurrentMonth to agree with CurrentMonth")
		}
	})
}
