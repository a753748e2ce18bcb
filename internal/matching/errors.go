package matching

import "fmt"

// Kind classifies engine failures so transport layers can map them
// without inspecting individual causes.
type Kind int

const (
	// KindNotFound: the patient, request, or interpreter does not exist.
	KindNotFound Kind = iota
	// KindPrecondition: the state observed before the transition already
	// violated a rule (wrong status, language mismatch, not owner).
	KindPrecondition
	// KindConflict: a concurrent transition won the race. Expected under
	// load and not logged as an anomaly.
	KindConflict
	// KindUpstream: the patient directory was unreachable or erroring.
	KindUpstream
)

// Codes carried on engine errors.
const (
	CodePatientNotFound     = "patient_not_found"
	CodeRequestNotFound     = "request_not_found"
	CodeInterpreterNotFound = "interpreter_not_found"
	CodeNotAvailable        = "not_available"
	CodeRequestNotPending   = "request_not_pending"
	CodeLanguageMismatch    = "language_mismatch"
	CodeNotYourRequest      = "not_your_request"
	CodeRequestNotAccepted  = "request_not_accepted"
	CodeDirectoryFailure    = "directory_failure"
)

// Error is the engine's failure type.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("matching: %s: %v", e.Code, e.Err)
	}
	return "matching: " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func notFound(code string, err error) *Error {
	return &Error{Kind: KindNotFound, Code: code, Err: err}
}

func precondition(code string, err error) *Error {
	return &Error{Kind: KindPrecondition, Code: code, Err: err}
}

func conflict(code string, err error) *Error {
	return &Error{Kind: KindConflict, Code: code, Err: err}
}

func upstream(code string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: code, Err: err}
}
