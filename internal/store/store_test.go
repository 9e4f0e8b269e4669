package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/shared"
	th "github.com/bookbuddy/bbx/internal/testing"
	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

// testBackend bundles everything store tests need against a fake server.
type testBackend struct {
	mux     *http.ServeMux
	server  *httptest.Server
	storage *th.MockStorage
	session *SessionStore
	library *LibraryStore
	tracker *TrackerWorkflow
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := services.NewClient(server.URL, server.Client(), quietLogger())
	users := services.NewUserService(client)
	userbooks := services.NewUserBookService(client)
	trackers := services.NewTrackerService(client)

	storage := th.NewMockStorage()
	session := NewSessionStore(users, storage, quietLogger())
	library := NewLibraryStore(session, userbooks, quietLogger())
	tracker := NewTrackerWorkflow(trackers, quietLogger())

	return &testBackend{
		mux:     mux,
		server:  server,
		storage: storage,
		session: session,
		library: library,
		tracker: tracker,
	}
}

func (b *testBackend) login(t *testing.T) *models.User {
	t.Helper()
	b.mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.User{
			ID:        1,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Username:  "reader",
			Email:     "reader@example.com",
		})
	})
	user, err := b.session.Login(context.Background(), "reader", "Password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return user
}
