package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/formatter"
	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// parseShelf maps a CLI shelf name to the wire enum.
func parseShelf(name string) (models.Shelf, error) {
	switch name {
	case "want", "want-to-read":
		return models.ShelfWantToRead, nil
	case "reading", "currently-reading":
		return models.ShelfCurrentlyReading, nil
	case "read", "finished":
		return models.ShelfRead, nil
	case "":
		return "", nil
	}

	shelf := models.Shelf(name)
	if !shelf.Valid() {
		return "", fmt.Errorf("%w: unknown shelf %q (want, reading, read)", shared.ErrInvalidFlag, name)
	}
	return shelf, nil
}

func parseUserBookID(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: book id must be a number, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// LibraryList prints the signed-in user's shelved library.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(); err != nil {
		return err
	}

	if err := r.library.Refresh(ctx); err != nil {
		return err
	}

	shelf, err := parseShelf(cmd.String("shelf"))
	if err != nil {
		return err
	}

	var books []models.UserBook
	if shelf != "" {
		books = r.library.ByShelf(shelf)
	} else {
		books = r.library.Books()
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, cmd.Bool("pretty"))
	}

	if len(books) == 0 {
		return r.writePlain("Library is empty\n")
	}

	for _, book := range books {
		r.writePlain("%d. %s - %s [%s]\n", book.ID, book.Book.Author, book.Book.Title, book.Shelf.Display())
	}
	return r.writePlain("\n%d books\n", len(books))
}

// LibraryAdd adds a search result to the library on the want-to-read shelf.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser()
	if err != nil {
		return err
	}

	openLibraryID := cmd.StringArg("open-library-id")
	if openLibraryID == "" {
		return fmt.Errorf("%w: open library id", shared.ErrMissingArgument)
	}

	if !r.library.Initialized() {
		if err := r.library.Refresh(ctx); err != nil {
			return err
		}
	}
	if r.library.InLibrary(openLibraryID) {
		return fmt.Errorf("%w: book is already in your library", shared.ErrConflict)
	}

	req := models.AddBookFromSearchRequest{
		UserID:        user.ID,
		Title:         cmd.String("title"),
		Author:        cmd.String("author"),
		OpenLibraryID: openLibraryID,
		CoverURL:      cmd.String("cover-url"),
	}

	// Fall back to the local search cache for metadata the flags left out.
	if (req.Title == "" || req.Author == "") && r.cache != nil {
		if cached, err := r.cache.Get(openLibraryID); err == nil {
			if req.Title == "" {
				req.Title = cached.Title
			}
			if req.Author == "" {
				req.Author = cached.Author
			}
			if req.CoverURL == "" {
				req.CoverURL = cached.CoverURL
			}
		}
	}

	book, err := r.library.AddFromSearch(ctx, req)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added %q to %s\n", book.Book.Title, book.Shelf.Display())
}

// LibraryShelve moves a book to a different shelf.
func (r *Runner) LibraryShelve(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(); err != nil {
		return err
	}

	id, err := parseUserBookID(cmd)
	if err != nil {
		return err
	}

	shelf, err := parseShelf(cmd.String("shelf"))
	if err != nil {
		return err
	}
	if shelf == "" {
		return fmt.Errorf("%w: --shelf", shared.ErrMissingArgument)
	}

	book, err := r.library.UpdateShelf(ctx, id, shelf)
	if err != nil {
		return err
	}

	if shelf == models.ShelfRead && book.CompletedAt != "" {
		return r.writePlain("✓ Finished %q (%s)\n", book.Book.Title, book.CompletedAt)
	}
	return r.writePlain("✓ Moved %q to %s\n", book.Book.Title, book.Shelf.Display())
}

// LibraryRemove removes a book from the library.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(); err != nil {
		return err
	}

	id, err := parseUserBookID(cmd)
	if err != nil {
		return err
	}

	if err := r.library.Remove(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Removed book %d\n", id)
}

// LibraryExport writes the library to CSV, Markdown or plain text.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser()
	if err != nil {
		return err
	}

	if err := r.library.Refresh(ctx); err != nil {
		return err
	}

	export := &models.LibraryExport{User: *user, Books: r.library.Books()}
	format := cmd.String("format")
	output := cmd.String("output")

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Library exported\n")
		r.writePlain("Books: %s\n", result.BooksFile)
		r.writePlain("Metadata: %s\n", result.MetadataFile)
		return nil

	case "markdown", "md":
		var coverURL string
		if reading := r.library.ByShelf(models.ShelfCurrentlyReading); len(reading) > 0 {
			coverURL = reading[0].Book.CoverURL
		}
		result, err := formatter.WriteMarkdownExport(export, output, coverURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Library exported to %s/\n", result.Directory)
		return nil

	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Library exported to %s\n", path)
		return nil
	}

	return fmt.Errorf("%w: unknown format %q (csv, markdown, text)", shared.ErrInvalidFlag, format)
}

// LibraryOpen opens a book's Open Library page in the default browser.
func (r *Runner) LibraryOpen(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(); err != nil {
		return err
	}

	id, err := parseUserBookID(cmd)
	if err != nil {
		return err
	}

	if !r.library.Initialized() {
		if err := r.library.Refresh(ctx); err != nil {
			return err
		}
	}

	book, ok := r.library.Get(id)
	if !ok {
		return fmt.Errorf("%w: no book %d in your library", shared.ErrNotFound, id)
	}
	if book.Book.OpenLibraryID == "" {
		return fmt.Errorf("%w: book %q has no Open Library entry", shared.ErrNotFound, book.Book.Title)
	}

	url := shared.OpenLibraryURL(book.Book.OpenLibraryID)
	r.logger.Info("opening browser", "url", url)
	return shared.OpenBrowser(url)
}

// libraryCommand handles shelved-library operations.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage your shelved library",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "shelf",
						Usage: "Filter by shelf (want, reading, read)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "add",
				Usage: "Add a book from search results",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "open-library-id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Book title"},
					&cli.StringFlag{Name: "author", Usage: "Book author"},
					&cli.StringFlag{Name: "cover-url", Usage: "Cover image URL"},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:  "shelve",
				Usage: "Move a book to a different shelf",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "shelf",
						Usage:    "Target shelf (want, reading, read)",
						Required: true,
					},
				},
				Action: r.LibraryShelve,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a book from your library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryRemove,
			},
			{
				Name:  "export",
				Usage: "Export your library to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, markdown, text)",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (defaults to username)",
					},
				},
				Action: r.LibraryExport,
			},
			{
				Name:  "open",
				Usage: "Open a book's Open Library page in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryOpen,
			},
		},
	}
}
