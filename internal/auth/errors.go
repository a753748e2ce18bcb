package auth

import "errors"

var (
	// ErrInvalidUsername is returned when the username is empty
	ErrInvalidUsername = errors.New("username is required")

	// ErrWeakPassword is returned when the password is shorter than 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidUserType is returned for unknown user types
	ErrInvalidUserType = errors.New("user_type must be staff, interpreter, or admin")

	// ErrUsernameTaken is returned when the username already exists
	ErrUsernameTaken = errors.New("username already exists")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned when username/password verification fails
	ErrInvalidCredentials = errors.New("incorrect username or password")
)
