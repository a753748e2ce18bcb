package requests

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the request lifecycle state.
type Status string

// Lifecycle states. PENDING requests sit in the queue, ACCEPTED requests
// belong to exactly one interpreter, and COMPLETED and CANCELLED are
// terminal.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the value is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DeliveryMethod is how the interpretation session is delivered.
type DeliveryMethod string

// Delivery methods.
const (
	DeliveryOnsite     DeliveryMethod = "onsite"
	DeliveryTelephone  DeliveryMethod = "telephone"
	DeliveryTelehealth DeliveryMethod = "telehealth"
)

// Valid reports whether the value is a known delivery method.
func (d DeliveryMethod) Valid() bool {
	switch d {
	case DeliveryOnsite, DeliveryTelephone, DeliveryTelehealth:
		return true
	}
	return false
}

// Request is an interpretation request. InterpreterID is nil until an
// interpreter accepts and stays set through completion. EncounterNotes is
// written at completion.
type Request struct {
	ID              uuid.UUID      `json:"id"`
	PatientID       uuid.UUID      `json:"patient_id"`
	RequestedBy     uuid.UUID      `json:"requested_by"`
	InterpreterID   *uuid.UUID     `json:"interpreter_id,omitempty"`
	Language        string         `json:"language"`
	IsStat          bool           `json:"is_stat"`
	DeliveryMethod  DeliveryMethod `json:"delivery_method"`
	Location        string         `json:"location,omitempty"`
	PatientType     string         `json:"patient_type,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	RequestNotes    string         `json:"request_notes,omitempty"`
	EncounterNotes  string         `json:"encounter_notes,omitempty"`
	Status          Status         `json:"status"`
	RequestedAt     time.Time      `json:"requested_at"`
	AcceptedAt      *time.Time     `json:"accepted_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SubmitRequest is the staff request body. Language defaults to the
// patient's preferred language when omitted.
type SubmitRequest struct {
	PatientID       uuid.UUID      `json:"patient_id"`
	Language        string         `json:"language"`
	IsStat          bool           `json:"is_stat"`
	DeliveryMethod  DeliveryMethod `json:"delivery_method"`
	Location        string         `json:"location"`
	PatientType     string         `json:"patient_type"`
	DurationMinutes int            `json:"duration_minutes"`
	RequestNotes    string         `json:"request_notes"`
}

// Validate checks the submit body. Language may still be empty here; the
// engine fills it from the patient record before persisting.
func (r *SubmitRequest) Validate() error {
	if r.PatientID == uuid.Nil {
		return ErrInvalidPatientID
	}
	if strings.TrimSpace(string(r.DeliveryMethod)) == "" {
		r.DeliveryMethod = DeliveryOnsite
	}
	if !r.DeliveryMethod.Valid() {
		return ErrInvalidDeliveryMethod
	}
	if r.DurationMinutes < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// CompleteRequest carries the optional encounter notes written at
// completion.
type CompleteRequest struct {
	EncounterNotes string `json:"encounter_notes"`
}
