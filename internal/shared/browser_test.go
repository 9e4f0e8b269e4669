package shared

import (
	"strings"
	"testing"
)

func TestOpenLibraryURL(t *testing.T) {
	url := OpenLibraryURL("OL893415W")
	if url != "https://openlibrary.org/works/OL893415W" {
		t.Errorf("unexpected URL: %q", url)
	}
}

func TestOpenBrowserUnsupportedPlatform(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()
	getRuntime = func() string { return "plan9" }

	err := OpenBrowser("https://openlibrary.org")
	if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
		t.Errorf("expected unsupported platform error, got %v", err)
	}
}
