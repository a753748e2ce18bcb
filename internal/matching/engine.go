package matching

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carebridge/interpreter-booking/internal/interpreters"
	"github.com/carebridge/interpreter-booking/internal/observability/metrics"
	"github.com/carebridge/interpreter-booking/internal/patients"
	"github.com/carebridge/interpreter-booking/internal/requests"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

var engineTracer = otel.Tracer("carebridge.internal.matching")

// RequestStore is the slice of the record store the engine transitions
// requests through.
type RequestStore interface {
	Create(ctx context.Context, req *requests.SubmitRequest, requestedBy uuid.UUID) (*requests.Request, error)
	Get(ctx context.Context, id uuid.UUID) (*requests.Request, error)
	ListPending(ctx context.Context, language string) ([]*requests.Request, error)
	AcceptTx(ctx context.Context, requestID, interpreterID uuid.UUID) (*requests.Request, error)
	CompleteTx(ctx context.Context, requestID, interpreterID uuid.UUID, encounterNotes string) (*requests.Request, error)
	CancelTx(ctx context.Context, requestID uuid.UUID) (*requests.Request, error)
}

// InterpreterStore resolves interpreter profiles for eligibility checks.
type InterpreterStore interface {
	Get(ctx context.Context, id uuid.UUID) (*interpreters.Interpreter, error)
	GetByLogin(ctx context.Context, loginID uuid.UUID) (*interpreters.Interpreter, error)
}

// PatientStore validates patient references at submission time.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patients.Patient, error)
}

// Engine enforces the request lifecycle: eligibility rules, state
// transitions, availability consumption, and acceptance races. All
// transitions are triggered synchronously by a caller action; the engine
// never retries internally.
type Engine struct {
	store        RequestStore
	interpreters InterpreterStore
	patients     PatientStore
	metrics      *metrics.MatchingMetrics
	logger       *logging.Logger
}

// NewEngine wires the engine to its stores. Metrics may be nil.
func NewEngine(store RequestStore, interp InterpreterStore, patientStore PatientStore, m *metrics.MatchingMetrics, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:        store,
		interpreters: interp,
		patients:     patientStore,
		metrics:      m,
		logger:       logger,
	}
}

// Submit validates the patient reference and creates a pending request.
// No interpreter eligibility is checked here; eligibility is resolved
// lazily at accept time. On failure nothing is persisted.
func (e *Engine) Submit(ctx context.Context, staffID uuid.UUID, req *requests.SubmitRequest) (*requests.Request, error) {
	ctx, span := engineTracer.Start(ctx, "matching.submit")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, precondition("invalid_request", err)
	}

	patient, err := e.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			return nil, notFound(CodePatientNotFound, err)
		}
		return nil, upstream(CodeDirectoryFailure, err)
	}
	if req.Language == "" {
		req.Language = patient.Language
	}
	span.SetAttributes(
		attribute.String("request.language", req.Language),
		attribute.Bool("request.stat", req.IsStat),
	)

	created, err := e.store.Create(ctx, req, staffID)
	if err != nil {
		return nil, err
	}

	e.metrics.ObserveSubmitted(created.Language, created.IsStat)
	e.logger.Info("request submitted",
		"request_id", created.ID,
		"patient_id", created.PatientID,
		"language", created.Language,
		"is_stat", created.IsStat)
	return created, nil
}

// PendingQueue returns the pending requests for a language, STAT first
// then oldest first.
func (e *Engine) PendingQueue(ctx context.Context, language string) ([]*requests.Request, error) {
	return e.store.ListPending(ctx, language)
}

// Accept assigns a pending request to the interpreter behind the given
// login. The precondition reads give the caller a precise failure; the
// conditional updates inside AcceptTx are authoritative, so a racing
// caller that passes the reads still loses cleanly with a conflict.
func (e *Engine) Accept(ctx context.Context, loginID, requestID uuid.UUID) (*requests.Request, error) {
	ctx, span := engineTracer.Start(ctx, "matching.accept")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID.String()))

	interp, err := e.interpreters.GetByLogin(ctx, loginID)
	if err != nil {
		if errors.Is(err, interpreters.ErrInterpreterNotFound) {
			return nil, notFound(CodeInterpreterNotFound, err)
		}
		return nil, err
	}
	if interp.AvailabilityStatus != interpreters.Available {
		return nil, precondition(CodeNotAvailable, nil)
	}

	req, err := e.store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, requests.ErrRequestNotFound) {
			return nil, notFound(CodeRequestNotFound, err)
		}
		return nil, err
	}
	if req.Status != requests.StatusPending {
		return nil, precondition(CodeRequestNotPending, nil)
	}
	if req.Language != interp.Language {
		return nil, precondition(CodeLanguageMismatch, nil)
	}

	accepted, err := e.store.AcceptTx(ctx, requestID, interp.ID)
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrNotPending):
			e.metrics.ObserveTransition("accept", "conflict")
			return nil, conflict(CodeRequestNotPending, err)
		case errors.Is(err, requests.ErrInterpreterUnavailable):
			e.metrics.ObserveTransition("accept", "conflict")
			return nil, conflict(CodeNotAvailable, err)
		}
		return nil, err
	}

	e.metrics.ObserveTransition("accept", "ok")
	e.metrics.ObserveQueueWait(accepted.IsStat, time.Since(accepted.RequestedAt).Seconds())
	e.logger.Info("request accepted",
		"request_id", accepted.ID,
		"interpreter_id", interp.ID,
		"language", accepted.Language)
	return accepted, nil
}

// Complete finalizes an accepted request owned by the interpreter behind
// the given login and releases the interpreter back to available. The
// availability reset applies regardless of the interpreter's current
// state.
func (e *Engine) Complete(ctx context.Context, loginID, requestID uuid.UUID, encounterNotes string) (*requests.Request, error) {
	ctx, span := engineTracer.Start(ctx, "matching.complete")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID.String()))

	interp, err := e.interpreters.GetByLogin(ctx, loginID)
	if err != nil {
		if errors.Is(err, interpreters.ErrInterpreterNotFound) {
			return nil, notFound(CodeInterpreterNotFound, err)
		}
		return nil, err
	}

	req, err := e.store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, requests.ErrRequestNotFound) {
			return nil, notFound(CodeRequestNotFound, err)
		}
		return nil, err
	}
	if req.Status == requests.StatusAccepted && (req.InterpreterID == nil || *req.InterpreterID != interp.ID) {
		return nil, precondition(CodeNotYourRequest, nil)
	}
	if req.Status != requests.StatusAccepted {
		return nil, precondition(CodeRequestNotAccepted, nil)
	}

	completed, err := e.store.CompleteTx(ctx, requestID, interp.ID, encounterNotes)
	if err != nil {
		if errors.Is(err, requests.ErrNotAccepted) {
			e.metrics.ObserveTransition("complete", "conflict")
			return nil, conflict(CodeRequestNotAccepted, err)
		}
		return nil, err
	}

	e.metrics.ObserveTransition("complete", "ok")
	e.logger.Info("request completed",
		"request_id", completed.ID,
		"interpreter_id", interp.ID)
	return completed, nil
}

// Cancel voids a request that is still pending. Staff cannot cancel an
// accepted request out from under its interpreter.
func (e *Engine) Cancel(ctx context.Context, requestID uuid.UUID) (*requests.Request, error) {
	req, err := e.store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, requests.ErrRequestNotFound) {
			return nil, notFound(CodeRequestNotFound, err)
		}
		return nil, err
	}
	if req.Status != requests.StatusPending {
		return nil, precondition(CodeRequestNotPending, nil)
	}

	cancelled, err := e.store.CancelTx(ctx, requestID)
	if err != nil {
		if errors.Is(err, requests.ErrNotPending) {
			e.metrics.ObserveTransition("cancel", "conflict")
			return nil, conflict(CodeRequestNotPending, err)
		}
		return nil, err
	}

	e.metrics.ObserveTransition("cancel", "ok")
	e.logger.Info("request cancelled", "request_id", cancelled.ID)
	return cancelled, nil
}
