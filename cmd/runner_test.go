package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// newTestRunner builds a Runner against a fake backend with an isolated
// local database.
func newTestRunner(t *testing.T, handler http.Handler) (*Runner, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := shared.DefaultConfig()
	config.API.BaseURL = server.URL
	config.Database.Path = filepath.Join(t.TempDir(), "bbx-test.db")

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		HTTPClient: server.Client(),
		Logger:     shared.NewLogger(bytes.NewBuffer(nil)),
		Output:     output,
		DB:         db,
	})
	return runner, output
}

func signIn(t *testing.T, runner *Runner) {
	t.Helper()
	if _, err := runner.session.Login(context.Background(), "reader", "Password1"); err != nil {
		t.Fatalf("failed to sign in test user: %v", err)
	}
}

// loginHandler responds to the login endpoint with a fixed user.
func loginHandler(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.User{
			ID:        1,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Username:  "reader",
			Email:     "reader@example.com",
		})
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner, _ := newTestRunner(t, http.NewServeMux())
			if runner.config == nil {
				t.Error("expected config to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
			if runner.session == nil || runner.library == nil || runner.tracker == nil {
				t.Error("expected stores to be constructed")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: &shared.Config{},
			})
			defer runner.Close()

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("requireUser", func(t *testing.T) {
		t.Run("signed out", func(t *testing.T) {
			runner, _ := newTestRunner(t, http.NewServeMux())

			_, err := runner.requireUser()
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("signed in", func(t *testing.T) {
			mux := http.NewServeMux()
			loginHandler(mux)
			runner, _ := newTestRunner(t, mux)
			signIn(t, runner)

			user, err := runner.requireUser()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Username != "reader" {
				t.Errorf("unexpected user: %+v", user)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner(t, http.NewServeMux())

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			runner, output := newTestRunner(t, http.NewServeMux())

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), `{"key":"value"}`) {
				t.Errorf("expected compact JSON, got %s", output.String())
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		runner, output := newTestRunner(t, http.NewServeMux())

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func TestSessionPersistence(t *testing.T) {
	t.Run("session survives a new runner over the same database", func(t *testing.T) {
		mux := http.NewServeMux()
		loginHandler(mux)

		server := httptest.NewServer(mux)
		defer server.Close()

		config := shared.DefaultConfig()
		config.API.BaseURL = server.URL
		config.Database.Path = filepath.Join(t.TempDir(), "bbx-test.db")

		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			t.Fatalf("failed to open test database: %v", err)
		}
		defer db.Close()
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate test database: %v", err)
		}

		first := NewRunner(RunnerOpts{
			Config:     config,
			HTTPClient: server.Client(),
			Logger:     shared.NewLogger(bytes.NewBuffer(nil)),
			Output:     &bytes.Buffer{},
			DB:         db,
		})
		signIn(t, first)

		second := NewRunner(RunnerOpts{
			Config:     config,
			HTTPClient: server.Client(),
			Logger:     shared.NewLogger(bytes.NewBuffer(nil)),
			Output:     &bytes.Buffer{},
			DB:         db,
		})

		user := second.session.Current()
		if user == nil || user.Username != "reader" {
			t.Errorf("expected restored session for reader, got %+v", user)
		}
	})
}

func TestLibraryCommands(t *testing.T) {
	t.Run("LibraryList prints shelved books", func(t *testing.T) {
		mux := http.NewServeMux()
		loginHandler(mux)
		mux.HandleFunc("GET /api/userbooks/user/1", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]models.UserBook{
				{
					ID:    10,
					Book:  models.BookCatalog{ID: 100, Title: "Dune", Author: "Frank Herbert"},
					Shelf: models.ShelfCurrentlyReading,
				},
			})
		})

		runner, output := newTestRunner(t, mux)
		signIn(t, runner)
		output.Reset()

		if err := runner.library.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}

		books := runner.library.Books()
		if len(books) != 1 || books[0].Book.Title != "Dune" {
			t.Fatalf("unexpected library contents: %+v", books)
		}
	})
}
