package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookbuddy/bbx/internal/shared"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, server.Client(), shared.NewLogger(io.Discard))
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		client := NewClient("", nil, nil)
		if client.BaseURL() != "http://localhost:8080" {
			t.Errorf("unexpected default base URL: %q", client.BaseURL())
		}
		if client.httpClient.Timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", client.httpClient.Timeout)
		}
	})

	t.Run("trailing slash is trimmed", func(t *testing.T) {
		client := NewClient("http://example.com/", nil, nil)
		if client.BaseURL() != "http://example.com" {
			t.Errorf("unexpected base URL: %q", client.BaseURL())
		}
	})

	t.Run("status codes map onto sentinel errors", func(t *testing.T) {
		cases := []struct {
			status   int
			sentinel error
		}{
			{http.StatusNotFound, shared.ErrNotFound},
			{http.StatusConflict, shared.ErrConflict},
			{http.StatusUnauthorized, shared.ErrUnauthorized},
			{http.StatusForbidden, shared.ErrUnauthorized},
			{http.StatusBadRequest, shared.ErrInvalidInput},
			{http.StatusUnprocessableEntity, shared.ErrInvalidInput},
			{http.StatusServiceUnavailable, shared.ErrServiceUnavailable},
			{http.StatusInternalServerError, shared.ErrAPIRequest},
			{http.StatusBadGateway, shared.ErrAPIRequest},
		}

		for _, tc := range cases {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			err := client.get(ctx, "/api/anything", nil, nil)
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("status %d: expected %v, got %v", tc.status, tc.sentinel, err)
			}
		}
	})

	t.Run("error detail is carried from any envelope field", func(t *testing.T) {
		for _, field := range []string{"message", "error", "detail"} {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{field: "already exists"})
			}))
			err := client.post(ctx, "/api/anything", nil, nil)
			if err == nil || !errors.Is(err, shared.ErrConflict) {
				t.Fatalf("field %q: expected ErrConflict, got %v", field, err)
			}
			if want := "already exists"; !strings.Contains(err.Error(), want) {
				t.Errorf("field %q: expected %q in error, got %q", field, want, err)
			}
		}
	})

	t.Run("timeout surfaces as ErrTimeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		t.Cleanup(server.Close)

		httpClient := &http.Client{Timeout: 20 * time.Millisecond}
		client := NewClient(server.URL, httpClient, shared.NewLogger(io.Discard))

		err := client.get(ctx, "/api/slow", nil, nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("connection failure surfaces as ErrAPIRequest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()
		client := NewClient(server.URL, nil, shared.NewLogger(io.Discard))

		err := client.get(ctx, "/api/gone", nil, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("mutating requests carry a request id", func(t *testing.T) {
		var gotID, getID string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				getID = r.Header.Get("X-Request-ID")
			default:
				gotID = r.Header.Get("X-Request-ID")
			}
		}))

		if err := client.post(ctx, "/api/thing", map[string]string{"a": "b"}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotID == "" {
			t.Error("expected X-Request-ID on POST")
		}
		if err := client.get(ctx, "/api/thing", nil, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if getID != "" {
			t.Error("expected no X-Request-ID on GET")
		}
	})

	t.Run("empty body with non-nil result is not an error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		var result map[string]any
		if err := client.get(ctx, "/api/empty", nil, &result); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("health", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/health" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(HealthResponse{Service: "bookbuddy", Status: "UP"})
		}))

		health, err := client.Health(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if health.Status != "UP" {
			t.Errorf("unexpected health: %+v", health)
		}
	})

	t.Run("raw does not translate status codes", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte(`{"mood":"short and stout"}`))
		}))

		resp, err := client.Raw(ctx, http.MethodGet, "/api/teapot", nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusTeapot {
			t.Errorf("expected status passed through, got %d", resp.StatusCode)
		}
		if !resp.IsJSON {
			t.Error("expected JSON detection")
		}
	})

	t.Run("raw reports non-JSON bodies", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("plain text"))
		}))

		resp, err := client.Raw(ctx, http.MethodGet, "/api/text", nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.IsJSON {
			t.Error("expected IsJSON false for plain text")
		}
		if string(resp.Body) != "plain text" {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})
}
