package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/shared"
)

// SearchBooks queries the catalog search endpoint and prints results.
//
// Hits are mirrored into the local search cache so 'bbx library add' can fill
// in metadata from an id alone.
func (r *Runner) SearchBooks(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	page := int(cmd.Int("page"))
	limit := int(cmd.Int("limit"))
	if limit == 0 {
		limit = r.config.Search.PageSize
	}

	r.logger.Info("searching catalog", "query", query, "page", page)

	response, err := r.search.Search(ctx, query, page, limit)
	if err != nil {
		return err
	}

	if r.cache != nil && r.config.Search.CacheResults {
		if err := r.cache.PutAll(response.Books); err != nil {
			r.logger.Warn("failed to cache search results", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(response, cmd.Bool("pretty"))
	}

	if len(response.Books) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	inLibrary := r.library.Initialized()
	for i, book := range response.Books {
		marker := " "
		if inLibrary && r.library.InLibrary(book.OpenLibraryID) {
			marker = "✓"
		}
		line := fmt.Sprintf("%s %d. %s - %s", marker, i+1, book.Author, book.Title)
		if book.PublishYear != 0 {
			line = fmt.Sprintf("%s (%d)", line, book.PublishYear)
		}
		r.writePlain("%s\n", line)
		r.writePlain("     id: %s\n", book.OpenLibraryID)
	}

	return r.writePlain("\nPage %d of %d results\n", response.CurrentPage, response.TotalResults)
}

// SearchCached lists locally cached search results.
func (r *Runner) SearchCached(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: local database unavailable", shared.ErrServiceUnavailable)
	}

	results, err := r.cache.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return r.writePlain("Search cache is empty\n")
	}

	for i, book := range results {
		r.writePlain("%d. %s - %s (%s)\n", i+1, book.Author, book.Title, book.OpenLibraryID)
	}
	return nil
}

// SearchClearCache empties the local search cache.
func (r *Runner) SearchClearCache(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: local database unavailable", shared.ErrServiceUnavailable)
	}

	if err := r.cache.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Search cache cleared\n")
}

// searchCommand handles catalog search operations.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the book catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "Result page",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per page",
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
		Action: r.SearchBooks,
		Commands: []*cli.Command{
			{
				Name:  "cached",
				Usage: "List locally cached search results",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results to show",
						Value: 50,
					},
				},
				Action: r.SearchCached,
			},
			{
				Name:   "clear-cache",
				Usage:  "Empty the local search cache",
				Action: r.SearchClearCache,
			},
		},
	}
}
