package tasks

import (
	"fmt"

	"github.com/bookbuddy/bbx/internal/models"
)

// Phase identifies the stage of a long-running operation.
type Phase int

const (
	BulkSubmit Phase = iota
	AddBook
	FetchHealth
	FetchProfile
	FetchLibrary
	FetchReviews
	FetchTrackers
)

func (p Phase) String() string {
	switch p {
	case BulkSubmit:
		return "submitting books"
	case AddBook:
		return "adding book"
	case FetchHealth:
		return "checking backend health"
	case FetchProfile:
		return "fetching profile"
	case FetchLibrary:
		return "fetching library"
	case FetchReviews:
		return "fetching reviews"
	case FetchTrackers:
		return "fetching trackers"
	default:
		return "working"
	}
}

// ProgressUpdate describes one step of a long-running operation. Data
// carries phase-specific payloads (the book being added, for instance).
type ProgressUpdate struct {
	Phase   Phase
	Step    int
	Total   int
	Message string
	Data    any
}

func bulkSubmitUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkSubmit,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s (%d books)", BulkSubmit, total),
	}
}

func addBookUpdate(step, total int, book models.UserBook) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s %d/%d: %s", AddBook, step, total, book.Book.Title),
		Data:    book,
	}
}

func dumpUpdate(phase Phase, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: phase.String(),
	}
}
