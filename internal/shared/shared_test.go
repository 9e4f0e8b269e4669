package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "key") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected a logger")
		}
	})

	t.Run("with logger carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("tagged")

		if !strings.Contains(buf.String(), "component") {
			t.Errorf("expected field in output: %q", buf.String())
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)

		logger.Info("quiet")
		logger.Error("loud")

		out := buf.String()
		if strings.Contains(out, "quiet") {
			t.Error("expected info suppressed at error level")
		}
		if !strings.Contains(out, "loud") {
			t.Error("expected error to pass through")
		}
	})

	t.Run("file logger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "bbx.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("to file")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("unexpected file contents: %q", data)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid UUID, got %q: %v", a, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]int{"books": 4}

	compact, err := MarshalJSON(payload, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(compact) != `{"books":4}` {
		t.Errorf("unexpected compact output: %s", compact)
	}

	pretty, err := MarshalJSON(payload, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("expected indented output, got %s", pretty)
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults come from the embedded example", func(t *testing.T) {
		config := DefaultConfig()
		if config.API.BaseURL == "" {
			t.Error("expected a default base URL")
		}
		if config.API.TimeoutSeconds <= 0 {
			t.Error("expected a positive default timeout")
		}
		if config.Database.Path == "" {
			t.Error("expected a default database path")
		}
		if config.Search.PageSize <= 0 {
			t.Error("expected a positive default page size")
		}
	})

	t.Run("load parses a TOML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[api]
base_url = "http://backend.test:9000"
timeout_seconds = 5

[database]
path = "/tmp/bbx.db"

[search]
rate_limit = 4.0
page_size = 10
cache_results = true
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.API.BaseURL != "http://backend.test:9000" {
			t.Errorf("unexpected base URL: %q", config.API.BaseURL)
		}
		if config.API.TimeoutSeconds != 5 {
			t.Errorf("unexpected timeout: %d", config.API.TimeoutSeconds)
		}
		if !config.Search.CacheResults {
			t.Error("expected cache_results true")
		}
	})

	t.Run("load fails on a missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("environment overrides the base URL", func(t *testing.T) {
		t.Setenv("BBX_API_BASE_URL", "http://override.test")

		config := DefaultConfig()
		if config.API.BaseURL != "http://override.test" {
			t.Errorf("expected env override, got %q", config.API.BaseURL)
		}
	})

	t.Run("create config file refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := LoadConfig(path); err != nil {
			t.Errorf("generated config should parse: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected an error for an existing file")
		}
	})
}
