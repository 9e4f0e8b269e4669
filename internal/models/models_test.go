package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bookbuddy/bbx/internal/shared"
)

func TestShelf(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, shelf := range []Shelf{ShelfWantToRead, ShelfCurrentlyReading, ShelfRead} {
			if !shelf.Valid() {
				t.Errorf("expected %q to be valid", shelf)
			}
		}
		for _, shelf := range []Shelf{"", "READING", "want_to_read"} {
			if shelf.Valid() {
				t.Errorf("expected %q to be invalid", shelf)
			}
		}
	})

	t.Run("display", func(t *testing.T) {
		cases := map[Shelf]string{
			ShelfWantToRead:       "Want To Read",
			ShelfCurrentlyReading: "Currently Reading",
			ShelfRead:             "Read",
		}
		for shelf, want := range cases {
			if got := shelf.Display(); got != want {
				t.Errorf("Display(%q) = %q, expected %q", shelf, got, want)
			}
		}
	})
}

func TestMonths(t *testing.T) {
	t.Run("enum names", func(t *testing.T) {
		cases := map[int]string{
			1:  "JANUARY",
			3:  "MARCH",
			12: "DECEMBER",
		}
		for month, want := range cases {
			if got := MonthName(month); got != want {
				t.Errorf("MonthName(%d) = %q, expected %q", month, got, want)
			}
		}
		for _, month := range []int{0, 13, -4} {
			if got := MonthName(month); got != "" {
				t.Errorf("MonthName(%d) = %q, expected empty", month, got)
			}
		}
	})

	t.Run("display names", func(t *testing.T) {
		if got := MonthDisplay(3); got != "March" {
			t.Errorf("MonthDisplay(3) = %q", got)
		}
		if got := MonthDisplay(9); got != "September" {
			t.Errorf("MonthDisplay(9) = %q", got)
		}
		if got := MonthDisplay(0); got != "" {
			t.Errorf("MonthDisplay(0) = %q, expected empty", got)
		}
	})
}

func TestUserDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{FirstName: "Ada", LastName: "Lovelace", Username: "reader"}, "Ada Lovelace"},
		{"first only", User{FirstName: "Ada", Username: "reader"}, "Ada"},
		{"username fallback", User{Username: "reader"}, "reader"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, expected %q", got, tc.want)
			}
		})
	}
}

func TestWireFormat(t *testing.T) {
	t.Run("tracker month and year stay strings", func(t *testing.T) {
		payload := `{"id":5,"month":"MARCH","year":"2026","targetBooksNum":4}`
		var tracker MonthlyTracker
		if err := json.Unmarshal([]byte(payload), &tracker); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tracker.Month != "MARCH" || tracker.Year != "2026" {
			t.Errorf("unexpected tracker: %+v", tracker)
		}
	})

	t.Run("completion flag uses isCompleted", func(t *testing.T) {
		data, err := json.Marshal(MonthlyTrackerBook{ID: 50, IsCompleted: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), `"isCompleted":true`) {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("philosophy keeps the backend's spelling", func(t *testing.T) {
		if GenrePhilosophy != "PHYLOSOPHY" {
			t.Errorf("unexpected genre constant: %q", GenrePhilosophy)
		}
	})

	t.Run("timestamps pass through as strings", func(t *testing.T) {
		payload := `{"id":10,"completedAt":"2026-03-15T09:00:00","createdAt":"2026-01-02T08:30:00"}`
		var book UserBook
		if err := json.Unmarshal([]byte(payload), &book); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if book.CompletedAt != "2026-03-15T09:00:00" {
			t.Errorf("unexpected timestamp: %q", book.CompletedAt)
		}
	})
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid payloads pass", func(t *testing.T) {
		cases := []any{
			UserRequest{FirstName: "Ada", LastName: "Lovelace", Username: "reader", Email: "reader@example.com", Password: "Password1"},
			ReviewRequest{UserID: 1, BookID: 2, Rating: 5},
			CreateTrackerRequest{UserID: 1, Year: 2026, Month: 3, MonthlyGoal: 4},
			AddTrackerBookRequest{MonthlyTrackerID: 5, UserBookID: 10},
			BulkTrackerBookRequest{MonthlyTrackerID: 5, UserBookIDs: []int64{10}},
		}
		for _, req := range cases {
			if err := ValidateRequest(req); err != nil {
				t.Errorf("%T: unexpected error: %v", req, err)
			}
		}
	})

	t.Run("password policy messages", func(t *testing.T) {
		cases := []struct {
			password string
			message  string
		}{
			{"Ab1", "password must be at least 8 characters"},
			{"password1", "password must contain an uppercase letter"},
			{"PASSWORD1", "password must contain a lowercase letter"},
			{"Passwordx", "password must contain a number"},
		}
		for _, tc := range cases {
			err := ValidateRequest(UserRequest{
				FirstName: "Ada",
				LastName:  "Lovelace",
				Username:  "reader",
				Email:     "reader@example.com",
				Password:  tc.password,
			})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("password %q: expected ErrInvalidInput, got %v", tc.password, err)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("password %q: expected %q in %q", tc.password, tc.message, err)
			}
		}
	})

	t.Run("rating bounds", func(t *testing.T) {
		err := ValidateRequest(ReviewRequest{UserID: 1, BookID: 2, Rating: 6})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if !strings.Contains(err.Error(), "at most 5") {
			t.Errorf("expected bound message, got %q", err)
		}
	})

	t.Run("several failures are joined", func(t *testing.T) {
		err := ValidateRequest(UserRequest{})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if !strings.Contains(err.Error(), ";") {
			t.Errorf("expected joined messages, got %q", err)
		}
	})
}
