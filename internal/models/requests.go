package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bookbuddy/bbx/internal/shared"
)

// validate is shared across request types; struct tags carry the rules.
var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginRequest authenticates with a username or email plus password.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// UserRequest creates or updates an account.
//
// The password policy mirrors the signup form: at least 8 characters with an
// uppercase letter, a lowercase letter, and a digit.
type UserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=abcdefghijklmnopqrstuvwxyz,containsany=0123456789"`
}

// BookCatalogRequest creates or updates a catalog entry.
type BookCatalogRequest struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	Description   string `json:"description,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty" validate:"omitempty,url"`
	OpenLibraryID string `json:"openLibraryId,omitempty"`
	Genre         Genre  `json:"genre,omitempty"`
}

// UserBookRequest adds an existing catalog entry to a user's library.
type UserBookRequest struct {
	UserID int64 `json:"userId" validate:"required"`
	BookID int64 `json:"bookId" validate:"required"`
	Shelf  Shelf `json:"shelf,omitempty"`
}

// AddBookFromSearchRequest adds a search result to a user's library,
// creating the catalog entry on the backend if it does not exist yet.
type AddBookFromSearchRequest struct {
	UserID        int64  `json:"userId" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	OpenLibraryID string `json:"openLibraryId" validate:"required"`
	CoverURL      string `json:"coverUrl,omitempty"`
	Genre         Genre  `json:"genre,omitempty"`
	Shelf         Shelf  `json:"shelf,omitempty"`
}

// ReviewRequest creates or updates a review. One review per (user, book).
type ReviewRequest struct {
	UserID     int64  `json:"userId" validate:"required"`
	BookID     int64  `json:"bookId" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"reviewText,omitempty"`
}

// CreateTrackerRequest creates a monthly tracker. One tracker per (user, month, year).
type CreateTrackerRequest struct {
	UserID      int64 `json:"userId" validate:"required"`
	Year        int   `json:"year" validate:"required,min=1"`
	Month       int   `json:"month" validate:"required,min=1,max=12"`
	MonthlyGoal int   `json:"monthlyGoal" validate:"required,min=1"`
}

// AddTrackerBookRequest associates a UserBook with a tracker.
type AddTrackerBookRequest struct {
	MonthlyTrackerID int64 `json:"monthlyTrackerId" validate:"required"`
	UserBookID       int64 `json:"userBookId" validate:"required"`
}

// BulkTrackerBookRequest associates several UserBooks with a tracker at once.
type BulkTrackerBookRequest struct {
	MonthlyTrackerID int64   `json:"monthlyTrackerId" validate:"required"`
	UserBookIDs      []int64 `json:"userBookIds" validate:"required,min=1"`
}

// ValidateRequest checks a request payload against its struct tags and returns
// field-level messages wrapped in [shared.ErrInvalidInput]. Validation runs
// before any network call; a failing payload is never sent.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}

	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(messages, "; "))
}

// fieldMessage translates a validator error into the message the forms showed.
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		if field == "Password" {
			return "password must be at least 8 characters"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "containsany":
		switch {
		case strings.ContainsAny(fe.Param(), "A"):
			return "password must contain an uppercase letter"
		case strings.ContainsAny(fe.Param(), "a"):
			return "password must contain a lowercase letter"
		default:
			return "password must contain a number"
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}
