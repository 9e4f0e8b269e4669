package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/shared"
)

// CatalogList prints every catalog entry.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	books, err := r.catalog.All(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, cmd.Bool("pretty"))
	}

	if len(books) == 0 {
		return r.writePlain("Catalog is empty\n")
	}

	for _, book := range books {
		line := fmt.Sprintf("%d. %s - %s", book.ID, book.Author, book.Title)
		if book.Genre != "" {
			line = fmt.Sprintf("%s [%s]", line, book.Genre)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// CatalogShow prints one catalog entry with its average rating.
func (r *Runner) CatalogShow(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: catalog id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: catalog id must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	book, err := r.catalog.ByID(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(book, true)
	}

	r.writePlainHeader(book.Title)
	r.writePlain("Author: %s\n", book.Author)
	if book.Genre != "" {
		r.writePlain("Genre: %s\n", book.Genre)
	}
	if book.Description != "" {
		r.writePlain("\n%s\n", book.Description)
	}

	if avg, err := r.reviews.AverageRating(ctx, book.ID); err == nil {
		r.writePlain("\nAverage rating: %.1f/5\n", avg)
	}

	return nil
}

// catalogCommand handles catalog browsing.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Browse the book catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all catalog entries",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "show",
				Usage: "Show one catalog entry",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogShow,
			},
		},
	}
}
