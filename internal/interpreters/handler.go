package interpreters

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/interpreter-booking/internal/auth"
	"github.com/carebridge/interpreter-booking/internal/identity"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

// Handler handles HTTP requests for interpreter profiles
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new interpreters handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /api/interpreters requests. It provisions the login
// account and the profile together.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInterpreterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash interpreter password", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	interp, err := h.repo.CreateWithLogin(r.Context(), req.Username, hash, &req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("failed to create interpreter", "username", req.Username, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("interpreter created", "interpreter_id", interp.ID, "language", interp.Language)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(interp)
}

// List handles GET /api/interpreters requests. Supports ?language= and
// ?available_only=true filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	availableOnly := r.URL.Query().Get("available_only") == "true"

	list, err := h.repo.List(r.Context(), language, availableOnly)
	if err != nil {
		h.logger.Error("failed to list interpreters", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Interpreter{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Get handles GET /api/interpreters/{interpreterID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "interpreterID"))
	if err != nil {
		http.Error(w, "invalid interpreter id", http.StatusBadRequest)
		return
	}

	interp, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interp)
}

// Me handles GET /api/interpreters/me requests
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	interp, err := h.repo.GetByLogin(r.Context(), user.ID)
	if err != nil {
		h.writeRepoError(w, err, user.ID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interp)
}

// UpdateMe handles PATCH /api/interpreters/me requests
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	interp, err := h.repo.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		h.writeRepoError(w, err, user.ID)
		return
	}

	if req.AvailabilityStatus != nil {
		h.logger.Info("interpreter availability updated",
			"interpreter_id", interp.ID,
			"availability", interp.AvailabilityStatus)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interp)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, subject uuid.UUID) {
	if errors.Is(err, ErrInterpreterNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("interpreter lookup failed", "subject", subject, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
