package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/shared"
)

// SearchCacheRepository caches catalog search results locally, keyed by
// Open Library ID, so `bbx library add` can resolve a previously seen result
// without repeating the search.
//
// Duplicate results are silently ignored (UNIQUE constraint on the external ID).
type SearchCacheRepository struct {
	db *sql.DB
}

// NewSearchCacheRepository creates a SearchCacheRepository with the given database connection.
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Put caches a single search result. Returns nil if the result is already cached.
func (r *SearchCacheRepository) Put(result models.BookSearchResult) error {
	if result.OpenLibraryID == "" {
		return fmt.Errorf("%w: search result has no Open Library ID", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "search_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO search_cache (id, sequence, open_library_id, title, author, cover_url, publish_year, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(), sequence, result.OpenLibraryID,
		result.Title, result.Author, result.CoverURL, result.PublishYear, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache search result: %w", err)
	}

	return nil
}

// PutAll caches a page of search results, skipping duplicates.
func (r *SearchCacheRepository) PutAll(results []models.BookSearchResult) error {
	for _, result := range results {
		if err := r.Put(result); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a cached result by Open Library ID.
// A cache miss surfaces as [shared.ErrNotFound].
func (r *SearchCacheRepository) Get(openLibraryID string) (*models.BookSearchResult, error) {
	query := `
		SELECT open_library_id, title, author, cover_url, publish_year
		FROM search_cache
		WHERE open_library_id = ?
	`

	var (
		result      models.BookSearchResult
		coverURL    sql.NullString
		publishYear sql.NullInt64
	)

	err := r.db.QueryRow(query, openLibraryID).Scan(
		&result.OpenLibraryID, &result.Title, &result.Author, &coverURL, &publishYear)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no cached result for %s", shared.ErrNotFound, openLibraryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query search cache: %w", err)
	}

	if coverURL.Valid {
		result.CoverURL = coverURL.String
	}
	if publishYear.Valid {
		result.PublishYear = int(publishYear.Int64)
	}

	return &result, nil
}

// List retrieves cached results in insertion order, newest last.
// A non-positive limit returns everything.
func (r *SearchCacheRepository) List(limit int) ([]models.BookSearchResult, error) {
	query := `
		SELECT open_library_id, title, author, cover_url, publish_year
		FROM search_cache
		ORDER BY sequence ASC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search cache: %w", err)
	}
	defer rows.Close()

	var results []models.BookSearchResult
	for rows.Next() {
		var (
			result      models.BookSearchResult
			coverURL    sql.NullString
			publishYear sql.NullInt64
		)
		if err := rows.Scan(&result.OpenLibraryID, &result.Title, &result.Author, &coverURL, &publishYear); err != nil {
			return nil, fmt.Errorf("failed to scan search cache row: %w", err)
		}
		if coverURL.Valid {
			result.CoverURL = coverURL.String
		}
		if publishYear.Valid {
			result.PublishYear = int(publishYear.Int64)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// Clear empties the cache.
func (r *SearchCacheRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM search_cache"); err != nil {
		return fmt.Errorf("failed to clear search cache: %w", err)
	}
	return nil
}
