// HTTP gateway for the BookBuddy REST API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bookbuddy/bbx/internal/shared"
)

// DefaultTimeout bounds every request to the backend. There are no automatic
// retries; a timeout fails like any other network error.
const DefaultTimeout = 10 * time.Second

// Client wraps outgoing HTTP calls to the BookBuddy backend.
//
// All domain services share one Client so the base URL, timeout, error
// mapping, and error logging live in exactly one place.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a gateway for the backend at baseURL.
//
// A nil httpClient gets a fresh client with [DefaultTimeout]; a nil logger
// falls back to the shared stderr logger.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// apiError is the backend's error envelope. Spring handlers are inconsistent
// about which field carries the text, so all three are tried.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Error, e.Detail} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do performs a JSON request and decodes the response into result (when non-nil).
//
// This is the only place status codes are inspected: they are mapped onto the
// shared sentinel errors so every caller distinguishes outcomes with
// [errors.Is] instead of status sniffing.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-ID", shared.GenerateID())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("request timed out", "method", method, "path", path)
			return fmt.Errorf("%w: %s %s", shared.ErrTimeout, method, path)
		}
		c.logger.Error("network error", "method", method, "path", path, "err", err)
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.statusError(method, path, resp.StatusCode, data)
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError maps an HTTP error status onto a sentinel error and logs it.
func (c *Client) statusError(method, path string, status int, body []byte) error {
	var envelope apiError
	_ = json.Unmarshal(body, &envelope)
	detail := envelope.text()
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}

	var sentinel error
	switch status {
	case http.StatusNotFound:
		sentinel = shared.ErrNotFound
	case http.StatusConflict:
		sentinel = shared.ErrConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = shared.ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = shared.ErrInvalidInput
	case http.StatusServiceUnavailable:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}

	// Absence is a normal outcome for some lookups; leave it to callers to
	// decide whether a 404 is worth alarming anyone about.
	if !errors.Is(sentinel, shared.ErrNotFound) {
		c.logger.Error("API error", "method", method, "path", path, "status", status, "detail", detail)
	}

	if detail != "" {
		return fmt.Errorf("%w: %s %s: status %d: %s", sentinel, method, path, status, detail)
	}
	return fmt.Errorf("%w: %s %s: status %d", sentinel, method, path, status)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, result any) error {
	return c.do(ctx, http.MethodPut, path, query, body, result)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, result)
}

// HealthResponse is the backend's liveness report.
type HealthResponse struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health checks backend liveness via GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.get(ctx, "/api/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// RawResponse represents a raw API response with status and body, for the
// debugging surface of the CLI.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs an unmapped request and returns the raw response. Status codes
// are NOT translated; this exists for the `bbx api` debug commands.
func (c *Client) Raw(ctx context.Context, method, path string, data []byte, headers map[string]string) (*RawResponse, error) {
	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		raw.IsJSON = true
		raw.JSONData = jsonData
	}

	return raw, nil
}
