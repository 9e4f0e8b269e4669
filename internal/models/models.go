package models

import "strings"

// Shelf is the reading-status bucket a [UserBook] belongs to.
type Shelf string

const (
	ShelfWantToRead       Shelf = "WANT_TO_READ"
	ShelfCurrentlyReading Shelf = "CURRENTLY_READING"
	ShelfRead             Shelf = "READ"
)

// Valid reports whether s is one of the three known shelves.
func (s Shelf) Valid() bool {
	switch s {
	case ShelfWantToRead, ShelfCurrentlyReading, ShelfRead:
		return true
	}
	return false
}

// Display renders the shelf for humans ("WANT_TO_READ" -> "Want To Read").
func (s Shelf) Display() string {
	words := strings.Split(strings.ToLower(string(s)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Genre mirrors the backend's catalog genre enum, including its spelling of PHYLOSOPHY.
type Genre string

const (
	GenreFiction        Genre = "FICTION"
	GenreNonFiction     Genre = "NON_FICTION"
	GenreFantasy        Genre = "FANTASY"
	GenreScienceFiction Genre = "SCIENCE_FICTION"
	GenreMystery        Genre = "MYSTERY"
	GenreRomance        Genre = "ROMANCE"
	GenreClassics       Genre = "CLASSICS"
	GenrePhilosophy     Genre = "PHYLOSOPHY"
	GenreHistory        Genre = "HISTORY"
	GenreBiography      Genre = "BIOGRAPHY"
	GenrePsychology     Genre = "PSYCHOLOGY"
	GenreOther          Genre = "OTHER"
)

// User represents a BookBuddy account.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// BookCatalog is a canonical book record shared across users.
type BookCatalog struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty"`
	OpenLibraryID string `json:"openLibraryId,omitempty"`
	Genre         Genre  `json:"genre,omitempty"`
}

// UserBook joins a user to a catalog entry with a shelf status.
//
// Timestamps are kept as the backend's wire strings; the client never
// fabricates or rewrites them (the server owns completedAt).
type UserBook struct {
	ID          int64       `json:"id"`
	Book        BookCatalog `json:"book"`
	Shelf       Shelf       `json:"shelf"`
	CompletedAt string      `json:"completedAt,omitempty"`
	CreatedAt   string      `json:"createdAt"`
}

// ReviewResponse is a review as returned by the backend.
type ReviewResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	BookTitle  string `json:"bookTitle"`
	BookID     int64  `json:"bookId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText,omitempty"`
}

// MonthlyTracker is a per-user, per-month reading goal.
//
// The backend serializes month as an enum name ("MARCH") and year as a string.
type MonthlyTracker struct {
	ID             int64                `json:"id"`
	User           User                 `json:"user"`
	Month          string               `json:"month"`
	Year           string               `json:"year"`
	TargetBooksNum int                  `json:"targetBooksNum"`
	GoalBooks      []MonthlyTrackerBook `json:"goalBooks,omitempty"`
}

// MonthlyTrackerBook joins a tracker to a UserBook with a completion flag.
// Completion is terminal; there is no un-complete operation.
type MonthlyTrackerBook struct {
	ID          int64    `json:"id"`
	UserBook    UserBook `json:"userBook"`
	IsCompleted bool     `json:"isCompleted"`
}

// TrackerProgress is the server-computed goal progress for a tracker.
// The client never recomputes the percentage except for display rounding.
type TrackerProgress struct {
	TrackerID            int64   `json:"trackerId"`
	TargetBooks          int     `json:"targetBooks"`
	TotalBooks           int     `json:"totalBooks"`
	CompletedBooks       int     `json:"completedBooks"`
	CompletionPercentage float64 `json:"completionPercentage"`
	Month                string  `json:"month"`
	Year                 string  `json:"year"`
}

// BookSearchResult is a single catalog search hit.
type BookSearchResult struct {
	OpenLibraryID string `json:"openLibraryId"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverURL      string `json:"coverUrl,omitempty"`
	PublishYear   int    `json:"publishYear,omitempty"`
}

// SearchResponse is a page of catalog search results.
type SearchResponse struct {
	TotalResults int                `json:"totalResults"`
	CurrentPage  int                `json:"currentPage"`
	Books        []BookSearchResult `json:"books"`
}

// LibraryExport bundles a user with their full shelved library for export.
type LibraryExport struct {
	User  User       `json:"user"`
	Books []UserBook `json:"books"`
}

// BulkTrackerBookResponse reports the outcome of a bulk tracker-book add.
type BulkTrackerBookResponse struct {
	Added   []MonthlyTrackerBook `json:"added"`
	Skipped []int64              `json:"skipped,omitempty"`
}

var monthNames = [12]string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// MonthName returns the backend's enum name for a 1-based month number, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthDisplay renders a 1-based month number for humans ("March").
func MonthDisplay(month int) string {
	name := MonthName(month)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
