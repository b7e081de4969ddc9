package session

import (
	"errors"
	"strings"
)

const (
	minPasswordLength = 6
	minUsernameLength = 3
)

// ValidationError lists every problem found in a login or sign-up form
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// ValidateLogin checks login input before it is sent
func ValidateLogin(email, password string) error {
	var problems []string
	if !strings.Contains(email, "@") {
		problems = append(problems, "enter a valid email address")
	}
	if len(password) < minPasswordLength {
		problems = append(problems, "password must be at least 6 characters")
	}
	return asValidationError(problems)
}

// ValidateRegister checks sign-up input before it is sent
func ValidateRegister(email, username, password, confirm string) error {
	var problems []string
	if !strings.Contains(email, "@") {
		problems = append(problems, "enter a valid email address")
	}
	if len(strings.TrimSpace(username)) < minUsernameLength {
		problems = append(problems, "username must be at least 3 characters")
	}
	if len(password) < minPasswordLength {
		problems = append(problems, "password must be at least 6 characters")
	}
	if password != confirm {
		problems = append(problems, "passwords do not match")
	}
	return asValidationError(problems)
}

// IsValidationError reports whether err came from form validation
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func asValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
