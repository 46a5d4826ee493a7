package model

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the post length limit in code points.
const MaxContentLength = 280

var (
	// ErrEmptyContent is returned for empty or whitespace-only post content.
	ErrEmptyContent = errors.New("content is empty")
	// ErrContentTooLong is returned when content exceeds MaxContentLength.
	ErrContentTooLong = errors.New("content exceeds 280 characters")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPassword is returned when a password does not meet the rules.
	ErrInvalidPassword = errors.New("password must be 8-16 characters of letters, digits or . _ - !")
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9._\-!]{8,16}$`)
)

// ValidateContent trims content and enforces the post length rules.
// Length is counted in code points, not bytes. Validation happens before
// any network call, so invalid content never reaches the backend.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// ValidateEmail checks the email shape used by the signup form.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the signup password rules.
func ValidatePassword(password string) error {
	if !passwordRe.MatchString(password) {
		return ErrInvalidPassword
	}
	return nil
}
