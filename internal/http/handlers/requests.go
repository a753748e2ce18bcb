package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/interpreter-booking/internal/identity"
	"github.com/carebridge/interpreter-booking/internal/interpreters"
	"github.com/carebridge/interpreter-booking/internal/matching"
	"github.com/carebridge/interpreter-booking/internal/patients"
	"github.com/carebridge/interpreter-booking/internal/requests"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

// RequestDetail is a request joined with its patient and interpreter for
// display.
type RequestDetail struct {
	*requests.Request
	Patient     *patients.Patient         `json:"patient,omitempty"`
	Interpreter *interpreters.Interpreter `json:"interpreter,omitempty"`
}

// RequestsHandler maps the request lifecycle onto HTTP.
type RequestsHandler struct {
	engine       *matching.Engine
	store        requests.Store
	interpreters interpreters.Repository
	patients     patients.Repository
	logger       *logging.Logger
}

// NewRequestsHandler creates a new request lifecycle handler
func NewRequestsHandler(engine *matching.Engine, store requests.Store, interp interpreters.Repository, patientRepo patients.Repository, logger *logging.Logger) *RequestsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &RequestsHandler{
		engine:       engine,
		store:        store,
		interpreters: interp,
		patients:     patientRepo,
		logger:       logger,
	}
}

// Create handles POST /api/requests requests
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body requests.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.engine.Submit(r.Context(), user.ID, &body)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// List handles GET /api/requests requests. Supports ?status= plus paging;
// newest first.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := requests.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	limit, offset := 100, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	list, err := h.store.List(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.Error("failed to list requests", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*requests.Request{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Get handles GET /api/requests/{requestID} requests. The response embeds
// the patient and, once assigned, the interpreter.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	req, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, requests.ErrRequestNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load request", "request_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	detail := RequestDetail{Request: req}
	if patient, err := h.patients.GetByID(r.Context(), req.PatientID); err == nil {
		detail.Patient = patient
	}
	if req.InterpreterID != nil {
		if interp, err := h.interpreters.Get(r.Context(), *req.InterpreterID); err == nil {
			detail.Interpreter = interp
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// Cancel handles POST /api/requests/{requestID}/cancel requests
func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	cancelled, err := h.engine.Cancel(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cancelled)
}

// Pending handles GET /api/interpreter/requests/pending requests. The
// queue is always the caller's own language, STAT first then oldest.
func (h *RequestsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	interp, ok := h.currentInterpreter(w, r)
	if !ok {
		return
	}

	queue, err := h.engine.PendingQueue(r.Context(), interp.Language)
	if err != nil {
		h.logger.Error("failed to load pending queue", "language", interp.Language, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if queue == nil {
		queue = []*requests.Request{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(queue)
}

// My handles GET /api/interpreter/requests/my requests
func (h *RequestsHandler) My(w http.ResponseWriter, r *http.Request) {
	interp, ok := h.currentInterpreter(w, r)
	if !ok {
		return
	}

	list, err := h.store.ListAcceptedByInterpreter(r.Context(), interp.ID)
	if err != nil {
		h.logger.Error("failed to list accepted requests", "interpreter_id", interp.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*requests.Request{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Accept handles POST /api/interpreter/requests/{requestID}/accept requests
func (h *RequestsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	accepted, err := h.engine.Accept(r.Context(), user.ID, id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accepted)
}

// Complete handles POST /api/interpreter/requests/{requestID}/complete requests
func (h *RequestsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	var body requests.CompleteRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	completed, err := h.engine.Complete(r.Context(), user.ID, id, body.EncounterNotes)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completed)
}

func (h *RequestsHandler) currentInterpreter(w http.ResponseWriter, r *http.Request) (*interpreters.Interpreter, bool) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	interp, err := h.interpreters.GetByLogin(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, interpreters.ErrInterpreterNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to resolve interpreter", "login_id", user.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return interp, true
}

// writeEngineError maps engine failure kinds onto status codes. Conflicts
// are expected under load and logged at debug only.
func (h *RequestsHandler) writeEngineError(w http.ResponseWriter, err error) {
	var engineErr *matching.Error
	if !errors.As(err, &engineErr) {
		h.logger.Error("engine operation failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch engineErr.Kind {
	case matching.KindNotFound:
		status = http.StatusNotFound
	case matching.KindPrecondition:
		status = http.StatusBadRequest
	case matching.KindConflict:
		status = http.StatusConflict
		h.logger.Debug("transition lost race", "code", engineErr.Code)
	case matching.KindUpstream:
		status = http.StatusBadGateway
		h.logger.Error("upstream failure", "code", engineErr.Code, "error", engineErr.Err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": engineErr.Code})
}
