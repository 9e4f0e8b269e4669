package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

func parseBookID(cmd *cli.Command, name string) (int64, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// ReviewSubmit creates a review for a book, replacing any existing one by the
// same user.
func (r *Runner) ReviewSubmit(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser()
	if err != nil {
		return err
	}

	bookID, err := parseBookID(cmd, "book-id")
	if err != nil {
		return err
	}

	req := models.ReviewRequest{
		UserID:     user.ID,
		BookID:     bookID,
		Rating:     int(cmd.Int("rating")),
		ReviewText: cmd.String("text"),
	}

	review, err := r.reviews.Upsert(ctx, user.Username, req)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Review saved for %q (%d/5)\n", review.BookTitle, review.Rating)
}

// ReviewList prints all reviews for a book.
func (r *Runner) ReviewList(ctx context.Context, cmd *cli.Command) error {
	bookID, err := parseBookID(cmd, "book-id")
	if err != nil {
		return err
	}

	reviews, err := r.reviews.ByBook(ctx, bookID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(reviews, cmd.Bool("pretty"))
	}

	if len(reviews) == 0 {
		return r.writePlain("No reviews yet\n")
	}

	for _, review := range reviews {
		stars := strings.Repeat("★", review.Rating) + strings.Repeat("☆", 5-review.Rating)
		r.writePlain("%s %s\n", stars, review.Username)
		if review.ReviewText != "" {
			r.writePlain("  %s\n", review.ReviewText)
		}
	}
	return nil
}

// ReviewAverage prints the average rating for a book.
func (r *Runner) ReviewAverage(ctx context.Context, cmd *cli.Command) error {
	bookID, err := parseBookID(cmd, "book-id")
	if err != nil {
		return err
	}

	avg, err := r.reviews.AverageRating(ctx, bookID)
	if err != nil {
		return err
	}

	return r.writePlain("Average rating: %.1f/5\n", avg)
}

// ReviewDelete removes one of the signed-in user's reviews.
func (r *Runner) ReviewDelete(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser()
	if err != nil {
		return err
	}

	reviewID, err := parseBookID(cmd, "review-id")
	if err != nil {
		return err
	}

	if err := r.reviews.Delete(ctx, reviewID, user.ID); err != nil {
		return err
	}

	return r.writePlain("✓ Review deleted\n")
}

// reviewCommand handles review operations.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Write and browse book reviews",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Write or replace your review for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "book-id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "rating",
						Usage:    "Rating from 1 to 5",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Review text",
					},
				},
				Action: r.ReviewSubmit,
			},
			{
				Name:  "list",
				Usage: "List reviews for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "book-id"},
				},
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
				Action: r.ReviewList,
			},
			{
				Name:  "average",
				Usage: "Show a book's average rating",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "book-id"},
				},
				Action: r.ReviewAverage,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete one of your reviews",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "review-id"},
				},
				Action: r.ReviewDelete,
			},
		},
	}
}
