package patients

import "errors"

var (
	// ErrInvalidName is returned when the patient name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidLanguage is returned when the patient language is missing
	ErrInvalidLanguage = errors.New("language is required")

	// ErrPatientNotFound is returned when a patient is not cached locally
	ErrPatientNotFound = errors.New("patient not found")
)
