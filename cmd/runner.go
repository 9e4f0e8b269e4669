package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/repositories"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/shared"
	"github.com/bookbuddy/bbx/internal/store"
	"github.com/bookbuddy/bbx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	client    *services.Client
	users     *services.UserService
	catalog   *services.CatalogService
	userbooks *services.UserBookService
	reviews   *services.ReviewService
	search    *services.SearchService
	trackers  *services.TrackerService
	session   *store.SessionStore
	library   *store.LibraryStore
	tracker   *store.TrackerWorkflow
	cache     *repositories.SearchCacheRepository
	db        *sql.DB
	engine    tasks.Engine
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration.
//
// The local database is opened lazily tolerant: when it cannot be opened the
// session simply starts signed out and search caching is disabled.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: time.Duration(opts.Config.API.TimeoutSeconds) * time.Second}
	}

	client := services.NewClient(opts.Config.API.BaseURL, opts.HTTPClient, opts.Logger)
	users := services.NewUserService(client)
	catalog := services.NewCatalogService(client)
	userbooks := services.NewUserBookService(client)
	reviews := services.NewReviewService(client)
	search := services.NewSearchService(client, opts.Config.Search.RateLimit)
	trackers := services.NewTrackerService(client)

	db := opts.DB
	var storage store.Storage
	var cache *repositories.SearchCacheRepository
	if db == nil {
		opened, err := shared.NewDatabase(opts.Config.Database.Path)
		if err != nil {
			opts.Logger.Warn("local database unavailable", "path", opts.Config.Database.Path, "error", err)
		} else {
			shared.ConfigureDatabase(opened, opts.Config.Database.MaxOpenConns, opts.Config.Database.MaxIdleConns)
			db = opened
		}
	}
	if db != nil {
		storage = repositories.NewSessionRepository(db)
		cache = repositories.NewSearchCacheRepository(db)
	} else {
		storage = store.NewMemoryStorage()
	}

	session := store.NewSessionStore(users, storage, opts.Logger)
	if err := session.Load(); err != nil {
		opts.Logger.Warn("failed to restore session", "error", err)
	}

	library := store.NewLibraryStore(session, userbooks, opts.Logger)
	tracker := store.NewTrackerWorkflow(trackers, opts.Logger)
	engine := tasks.NewAccountEngine(client, users, userbooks, reviews, trackers)

	return &Runner{
		config:    opts.Config,
		client:    client,
		users:     users,
		catalog:   catalog,
		userbooks: userbooks,
		reviews:   reviews,
		search:    search,
		trackers:  trackers,
		session:   session,
		library:   library,
		tracker:   tracker,
		cache:     cache,
		db:        db,
		engine:    engine,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

// Close releases the Runner's local database handle.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// SetLogger swaps the Runner's logger, used when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, libraryCommand, catalogCommand, reviewCommand, trackerCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireUser returns the signed-in user or an authentication error.
func (r *Runner) requireUser() (*models.User, error) {
	user := r.session.Current()
	if user == nil {
		return nil, fmt.Errorf("%w: run 'bbx auth login' first", shared.ErrNotAuthenticated)
	}
	return user, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
