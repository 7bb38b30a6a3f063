// Package validation contains input validation helpers shared by services
// and handlers.
package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"pennypost/internal/models"
)

const (
	MaxContentTextLen = 500
	MaxSearchQueryLen = 100
	MinUsernameLen    = 3
	MaxUsernameLen    = 30
	MinPasswordLen    = 8
	MaxPasswordLen    = 72 // bcrypt input limit
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateContentText checks the body of a post or comment.
func ValidateContentText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.NewValidationError("text is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxContentTextLen {
		return models.NewValidationError("text must be at most 500 characters")
	}
	return nil
}

// ValidateImageURL checks an optional content image link.
func ValidateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewValidationError("image_url must be a valid http(s) URL")
	}
	return nil
}

func ValidateSearchQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return models.NewValidationError("search query is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxSearchQueryLen {
		return models.NewValidationError("search query is too long")
	}
	return nil
}

func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return models.NewValidationError("username must be between 3 and 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("username may only contain letters, numbers and underscores")
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("email is not valid")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return models.NewValidationError("password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLen {
		return models.NewValidationError("password is too long")
	}
	return nil
}
