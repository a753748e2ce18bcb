package interpreters

import "errors"

var (
	// ErrInvalidUsername is returned when the username is empty
	ErrInvalidUsername = errors.New("username is required")

	// ErrWeakPassword is returned when the password is shorter than 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidName is returned when the interpreter name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidLanguage is returned when the interpreter language is missing
	ErrInvalidLanguage = errors.New("language is required")

	// ErrInvalidAvailability is returned for unknown availability states
	ErrInvalidAvailability = errors.New("availability_status must be available, busy, or unavailable")

	// ErrUsernameTaken is returned when the username already exists
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInterpreterNotFound is returned when an interpreter profile is not found
	ErrInterpreterNotFound = errors.New("interpreter profile not found")
)
