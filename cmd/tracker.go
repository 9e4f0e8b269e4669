package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
	"github.com/bookbuddy/bbx/internal/store"
	"github.com/bookbuddy/bbx/internal/tasks"
)

// trackerMonth resolves the month/year flags, defaulting to the current month.
func trackerMonth(cmd *cli.Command) (int, int, error) {
	month, year := store.CurrentMonth()
	if flag := int(cmd.Int("month")); flag != 0 {
		month = flag
	}
	if flag := int(cmd.Int("year")); flag != 0 {
		year = flag
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month must be 1-12, got %d", shared.ErrInvalidFlag, month)
	}
	return month, year, nil
}

// loadTrackerMonth loads the workflow for the flagged month.
func (r *Runner) loadTrackerMonth(ctx context.Context, cmd *cli.Command) (int, int, error) {
	user, err := r.requireUser()
	if err != nil {
		return 0, 0, err
	}

	month, year, err := trackerMonth(cmd)
	if err != nil {
		return 0, 0, err
	}

	if err := r.tracker.LoadForMonth(ctx, user.ID, month, year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// TrackerShow prints the tracker for a month, or a hint when none exists.
func (r *Runner) TrackerShow(ctx context.Context, cmd *cli.Command) error {
	month, year, err := r.loadTrackerMonth(ctx, cmd)
	if err != nil {
		return err
	}

	if r.tracker.State() == store.NoTracker {
		r.writePlain("No tracker for %s %d\n", models.MonthDisplay(month), year)
		return r.writePlain("Create one with: bbx tracker create --goal <books>\n")
	}

	tracker := r.tracker.Tracker()
	progress := r.tracker.Progress()
	books := r.tracker.Books()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"tracker":  tracker,
			"progress": progress,
			"books":    books,
		}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s %d", models.MonthDisplay(month), year))
	if progress != nil {
		r.writePlain("Goal: %d books\n", progress.TargetBooks)
		r.writePlain("Completed: %d/%d (%.0f%%)\n", progress.CompletedBooks, progress.TotalBooks, progress.CompletionPercentage)
	} else {
		r.writePlain("Goal: %d books\n", tracker.TargetBooksNum)
	}

	if len(books) == 0 {
		return r.writePlain("\nNo books in this tracker yet\n")
	}

	r.writePlain("\n")
	for _, entry := range books {
		marker := "◻"
		if entry.IsCompleted {
			marker = "✓"
		}
		r.writePlain("%s %d. %s - %s\n", marker, entry.ID, entry.UserBook.Book.Author, entry.UserBook.Book.Title)
	}
	return nil
}

// TrackerCreate creates a tracker for the month with the given goal.
func (r *Runner) TrackerCreate(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser()
	if err != nil {
		return err
	}

	month, year, err := trackerMonth(cmd)
	if err != nil {
		return err
	}

	if err := r.tracker.LoadForMonth(ctx, user.ID, month, year); err != nil {
		return err
	}

	tracker, err := r.tracker.Create(ctx, user.ID, int(cmd.Int("goal")))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Tracker created for %s %s (goal: %d books)\n",
		models.MonthDisplay(month), tracker.Year, tracker.TargetBooksNum)
}

// TrackerAdd adds one library book to the month's tracker.
func (r *Runner) TrackerAdd(ctx context.Context, cmd *cli.Command) error {
	if _, _, err := r.loadTrackerMonth(ctx, cmd); err != nil {
		return err
	}

	raw := cmd.StringArg("book-id")
	if raw == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: book id must be a number, got %q", shared.ErrInvalidArgument, raw)
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

	entry, err := r.tracker.AddBook(ctx, book)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added %q to the tracker (entry %d)\n", entry.UserBook.Book.Title, entry.ID)
}

// TrackerBulkAdd adds every eligible library book to the month's tracker.
func (r *Runner) TrackerBulkAdd(ctx context.Context, cmd *cli.Command) error {
	if _, _, err := r.loadTrackerMonth(ctx, cmd); err != nil {
		return err
	}
	if r.tracker.State() == store.NoTracker {
		return fmt.Errorf("%w: no tracker for this month", shared.ErrNotFound)
	}

	if err := r.library.Refresh(ctx); err != nil {
		return err
	}

	candidates := r.tracker.CandidateBooks(r.library.Books())
	if len(candidates) == 0 {
		return r.writePlain("No eligible books to add\n")
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.BulkSubmit:
				r.writePlain("📚 %s\n", update.Message)
			case tasks.AddBook:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.BulkAdd(ctx, progressCh, r.tracker.Tracker().ID, candidates, tasks.BulkAddOpts{})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Bulk Add Complete")
	r.writePlain("Added: %d/%d\n", result.SuccessCount, result.Requested)
	if result.FailedCount > 0 {
		r.writePlain("\nSkipped %d books:\n", result.FailedCount)
		for _, entry := range result.Results {
			if entry.Error != nil {
				r.writePlain("  - %s - %s\n", entry.Book.Book.Author, entry.Book.Book.Title)
			}
		}
	}
	return nil
}

// TrackerComplete marks a tracker entry as finished.
func (r *Runner) TrackerComplete(ctx context.Context, cmd *cli.Command) error {
	if _, _, err := r.loadTrackerMonth(ctx, cmd); err != nil {
		return err
	}

	raw := cmd.StringArg("entry-id")
	if raw == "" {
		return fmt.Errorf("%w: tracker entry id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: entry id must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	if err := r.tracker.ToggleCompletion(ctx, id); err != nil {
		return err
	}

	if progress := r.tracker.Progress(); progress != nil {
		return r.writePlain("✓ Book completed (%d/%d, %.0f%%)\n",
			progress.CompletedBooks, progress.TargetBooks, progress.CompletionPercentage)
	}
	return r.writePlain("✓ Book completed\n")
}

// TrackerRemove removes an entry from the month's tracker.
func (r *Runner) TrackerRemove(ctx context.Context, cmd *cli.Command) error {
	if _, _, err := r.loadTrackerMonth(ctx, cmd); err != nil {
		return err
	}

	raw := cmd.StringArg("entry-id")
	if raw == "" {
		return fmt.Errorf("%w: tracker entry id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: entry id must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	if err := r.tracker.RemoveBook(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Entry removed from tracker\n")
}

// TrackerGoal updates the month's reading goal.
func (r *Runner) TrackerGoal(ctx context.Context, cmd *cli.Command) error {
	if _, _, err := r.loadTrackerMonth(ctx, cmd); err != nil {
		return err
	}

	tracker, err := r.tracker.UpdateGoal(ctx, int(cmd.Int("goal")))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Goal updated to %d books\n", tracker.TargetBooksNum)
}

// TrackerDelete deletes the month's tracker entirely.
func (r *Runner) TrackerDelete(ctx context.Context, cmd *cli.Command) error {
	month, year, err := r.loadTrackerMonth(ctx, cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete the %s %d tracker", shared.ErrMissingConfig, models.MonthDisplay(month), year)
	}

	if err := r.tracker.Delete(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Tracker deleted for %s %d\n", models.MonthDisplay(month), year)
}

// trackerCommand handles monthly reading-goal operations.
func trackerCommand(r *Runner) *cli.Command {
	monthFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "month",
			Usage: "Month 1-12 (default: current)",
		},
		&cli.IntFlag{
			Name:  "year",
			Usage: "Year (default: current)",
		},
	}

	return &cli.Command{
		Name:    "tracker",
		Aliases: []string{"goal"},
		Usage:   "Track monthly reading goals",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the tracker for a month",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				}, monthFlags...),
				Action: r.TrackerShow,
			},
			{
				Name:  "create",
				Usage: "Create a tracker for a month",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:     "goal",
						Usage:    "Number of books to read",
						Required: true,
					},
				}, monthFlags...),
				Action: r.TrackerCreate,
			},
			{
				Name:  "add",
				Usage: "Add a library book to the tracker",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "book-id"},
				},
				Flags:  monthFlags,
				Action: r.TrackerAdd,
			},
			{
				Name:   "bulk-add",
				Usage:  "Add every eligible library book to the tracker",
				Flags:  monthFlags,
				Action: r.TrackerBulkAdd,
			},
			{
				Name:  "complete",
				Usage: "Mark a tracker entry as finished",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "entry-id"},
				},
				Flags:  monthFlags,
				Action: r.TrackerComplete,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove an entry from the tracker",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "entry-id"},
				},
				Flags:  monthFlags,
				Action: r.TrackerRemove,
			},
			{
				Name:  "goal",
				Usage: "Update the monthly goal",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:     "goal",
						Usage:    "New number of books",
						Required: true,
					},
				}, monthFlags...),
				Action: r.TrackerGoal,
			},
			{
				Name:  "delete",
				Usage: "Delete the tracker for a month",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion",
					},
				}, monthFlags...),
				Action: r.TrackerDelete,
			},
		},
	}
}
