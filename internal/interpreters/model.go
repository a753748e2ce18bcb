package interpreters

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Availability is the interpreter's declared availability state.
type Availability string

// Availability states. AVAILABLE is required to accept new work; the
// matching engine sets BUSY on accept and AVAILABLE on complete.
const (
	Available   Availability = "available"
	Busy        Availability = "busy"
	Unavailable Availability = "unavailable"
)

// Valid reports whether the value is a known availability state.
func (a Availability) Valid() bool {
	switch a {
	case Available, Busy, Unavailable:
		return true
	}
	return false
}

// Interpreter is an interpreter profile. Language is a single value and
// matching is an exact string comparison. GenderPreference is stored for
// display only and never filtered on.
type Interpreter struct {
	ID                 uuid.UUID    `json:"id"`
	LoginID            uuid.UUID    `json:"login_id"`
	Name               string       `json:"name"`
	PhoneNumber        string       `json:"phone_number,omitempty"`
	Email              string       `json:"email,omitempty"`
	Language           string       `json:"language"`
	Gender             string       `json:"gender,omitempty"`
	GenderPreference   string       `json:"gender_preference,omitempty"`
	AvailabilityStatus Availability `json:"availability_status"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// CreateInterpreterRequest creates a login account and profile together.
type CreateInterpreterRequest struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Language         string `json:"language"`
	PhoneNumber      string `json:"phone_number"`
	Email            string `json:"email"`
	Gender           string `json:"gender"`
	GenderPreference string `json:"gender_preference"`
}

// Validate checks required fields.
func (r *CreateInterpreterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrInvalidUsername
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Language) == "" {
		return ErrInvalidLanguage
	}
	return nil
}

// UpdateProfileRequest is the interpreter self-service update body.
// Availability may change at any time, even while BUSY; it is the
// interpreter's declaration of future intent, not a lock.
type UpdateProfileRequest struct {
	AvailabilityStatus *Availability `json:"availability_status,omitempty"`
	PhoneNumber        *string       `json:"phone_number,omitempty"`
	Email              *string       `json:"email,omitempty"`
}

// Validate checks the optional fields that have constrained values.
func (r *UpdateProfileRequest) Validate() error {
	if r.AvailabilityStatus != nil && !r.AvailabilityStatus.Valid() {
		return ErrInvalidAvailability
	}
	return nil
}
