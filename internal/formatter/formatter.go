// package formatter provides functions to export a user's library to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// ExportToCSV converts a LibraryExport to CSV format with columns: ID, Title, Author, Genre, Shelf, CompletedAt
func ExportToCSV(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Author", "Genre", "Shelf", "CompletedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, book := range export.Books {
		record := []string{
			strconv.FormatInt(book.ID, 10),
			book.Book.Title,
			book.Book.Author,
			string(book.Book.Genre),
			string(book.Shelf),
			book.CompletedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a LibraryExport to Markdown format, grouped by shelf,
// with an optional profile image
func ExportToMarkdown(export *models.LibraryExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s's Library\n\n", export.User.DisplayName()))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Profile](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Books**: %d\n\n", len(export.Books)))

	for _, shelf := range []models.Shelf{models.ShelfCurrentlyReading, models.ShelfWantToRead, models.ShelfRead} {
		books := booksOnShelf(export.Books, shelf)
		if len(books) == 0 {
			continue
		}

		buf.WriteString(fmt.Sprintf("## %s\n\n", shelf.Display()))
		for i, book := range books {
			genrePart := ""
			if book.Book.Genre != "" {
				genrePart = fmt.Sprintf(" (%s)", book.Book.Genre)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, book.Book.Author, book.Book.Title, genrePart))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a LibraryExport to plain text format
func ExportToText(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Library: %s\n", export.User.DisplayName()))
	buf.WriteString(fmt.Sprintf("Books: %d\n\n", len(export.Books)))

	for i, book := range export.Books {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, book.Book.Author, book.Book.Title, book.Shelf.Display()))
	}

	return buf.Bytes(), nil
}

func booksOnShelf(books []models.UserBook, shelf models.Shelf) []models.UserBook {
	var matched []models.UserBook
	for _, book := range books {
		if book.Shelf == shelf {
			matched = append(matched, book)
		}
	}
	return matched
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of the account metadata (without books)
func ToMetadataJSON(user models.User) ([]byte, error) {
	return shared.MarshalJSON(user, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	BooksFile    string
	MetadataFile string
}

// WriteCSVExport exports a library to CSV format with accompanying metadata JSON file.
//
// Defaults to the username as the base filename & creates {base}_books.csv and {base}_metadata.json
func WriteCSVExport(export *models.LibraryExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.User.Username
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	booksFile := baseFilepath + "_books.csv"
	if err := os.WriteFile(booksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.User)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		BooksFile:    booksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a library to Markdown format in a dedicated directory.
//
// Directory name defaults to the username.
// The imageURL parameter is optional - if provided, attempts to download a cover image
// (typically the cover of the book currently being read).
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *models.LibraryExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.User.Username
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a library to plain text format.
//
// Defaults to {username}_books.txt as the filename.
func WriteTextExport(export *models.LibraryExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_books.txt", export.User.Username)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
