package patients

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient is a demographic record cached locally from the directory.
// Rows are keyed by the external fhir_id so a sync can be retried safely.
type Patient struct {
	ID          uuid.UUID `json:"id"`
	FHIRID      string    `json:"fhir_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	BirthDate   string    `json:"birthdate,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Address     string    `json:"address,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePatientRequest is the request body for creating a patient in the
// directory and caching it locally.
type CreatePatientRequest struct {
	Name        string `json:"name"`
	BirthDate   string `json:"birthdate"`
	Gender      string `json:"gender"`
	Language    string `json:"language"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Location    string `json:"location"`
}

// Validate checks required fields.
func (r *CreatePatientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Language) == "" {
		return ErrInvalidLanguage
	}
	return nil
}
