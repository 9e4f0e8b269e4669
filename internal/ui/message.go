package ui

import (
	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/tasks"
)

// libraryRefreshedMsg reports completion of a library refresh.
type libraryRefreshedMsg struct {
	err error
}

// trackerLoadedMsg reports completion of a tracker load for the viewed month.
type trackerLoadedMsg struct {
	err error
}

// bookCompletedMsg reports the outcome of completing a tracker book.
type bookCompletedMsg struct {
	err error
}

// progressUpdateMsg carries a single [tasks.ProgressUpdate] from a running bulk add.
type progressUpdateMsg tasks.ProgressUpdate

// bulkAddCompleteMsg reports the final outcome of a bulk add.
type bulkAddCompleteMsg struct {
	result *tasks.BulkAddResult
	err    error
}

// shelfMovedMsg reports the outcome of moving a library book to another shelf.
type shelfMovedMsg struct {
	err error
}

// searchResultsMsg carries one page of catalog search results.
type searchResultsMsg struct {
	results []models.BookSearchResult
	err     error
}

// searchAddedMsg reports the outcome of adding a search result to the library.
type searchAddedMsg struct {
	title string
	err   error
}
