package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/bookbuddy/bbx/internal/models"
)

var (
	_ list.Item = bookItem{}
	_ list.Item = trackerBookItem{}
	_ list.Item = searchItem{}
)

// bookItem wraps [models.UserBook] to implement [list.Item].
type bookItem struct {
	book models.UserBook
}

func (i bookItem) FilterValue() string { return i.book.Book.Title }
func (i bookItem) Title() string       { return i.book.Book.Title }
func (i bookItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.book.Book.Author, i.book.Shelf.Display())
	if i.book.Book.Genre != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.book.Book.Genre)
	}
	return desc
}

// trackerBookItem wraps [models.MonthlyTrackerBook] to implement [list.Item].
type trackerBookItem struct {
	entry models.MonthlyTrackerBook
}

func (i trackerBookItem) FilterValue() string { return i.entry.UserBook.Book.Title }
func (i trackerBookItem) Title() string {
	if i.entry.IsCompleted {
		return fmt.Sprintf("✓ %s", i.entry.UserBook.Book.Title)
	}
	return i.entry.UserBook.Book.Title
}
func (i trackerBookItem) Description() string {
	if i.entry.IsCompleted {
		return fmt.Sprintf("%s • finished", i.entry.UserBook.Book.Author)
	}
	return fmt.Sprintf("%s • in progress", i.entry.UserBook.Book.Author)
}

// searchItem wraps [models.BookSearchResult] to implement [list.Item].
type searchItem struct {
	hit       models.BookSearchResult
	inLibrary bool
}

func (i searchItem) FilterValue() string { return i.hit.Title }
func (i searchItem) Title() string {
	if i.inLibrary {
		return fmt.Sprintf("✓ %s", i.hit.Title)
	}
	return i.hit.Title
}
func (i searchItem) Description() string {
	desc := i.hit.Author
	if i.hit.PublishYear != 0 {
		desc = fmt.Sprintf("%s • %d", desc, i.hit.PublishYear)
	}
	if i.inLibrary {
		desc = fmt.Sprintf("%s • in library", desc)
	}
	return desc
}
