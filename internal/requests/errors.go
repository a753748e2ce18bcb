package requests

import "errors"

var (
	// ErrInvalidPatientID is returned when the submit body has no patient id
	ErrInvalidPatientID = errors.New("patient_id is required")

	// ErrInvalidDeliveryMethod is returned for unknown delivery methods
	ErrInvalidDeliveryMethod = errors.New("delivery_method must be onsite, telephone, or telehealth")

	// ErrInvalidDuration is returned for a negative expected duration
	ErrInvalidDuration = errors.New("duration_minutes must not be negative")

	// ErrRequestNotFound is returned when a request does not exist
	ErrRequestNotFound = errors.New("request not found")

	// ErrNotPending is returned when a conditional transition expected a
	// pending request and found none
	ErrNotPending = errors.New("request is no longer pending")

	// ErrNotAccepted is returned when completion expected an accepted
	// request owned by the caller and found none
	ErrNotAccepted = errors.New("request is not accepted by this interpreter")

	// ErrInterpreterUnavailable is returned when the conditional
	// availability update found the interpreter not available
	ErrInterpreterUnavailable = errors.New("interpreter is not available")
)
