package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User roles. Staff endpoints also admit admins.
const (
	RoleStaff       = "staff"
	RoleInterpreter = "interpreter"
	RoleAdmin       = "admin"
)

// User is a login account for a staff member, interpreter, or admin.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the request body for creating a user account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// Validate checks the register request fields.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrInvalidUsername
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	switch r.UserType {
	case RoleStaff, RoleInterpreter, RoleAdmin:
		return nil
	default:
		return ErrInvalidUserType
	}
}

// LoginRequest is the request body for obtaining an access token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
