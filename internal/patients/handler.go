package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/interpreter-booking/internal/directory"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

// Handler handles HTTP requests for patients
type Handler struct {
	service *Service
	dir     DirectoryClient
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a new patients handler
func NewHandler(service *Service, dir DirectoryClient, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		dir:     dir,
		repo:    repo,
		logger:  logger,
	}
}

// SearchDirectory handles GET /api/fhir/patients/search requests
func (h *Handler) SearchDirectory(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	language := r.URL.Query().Get("language")

	resources, err := h.dir.SearchPatients(r.Context(), name, language, 20)
	if err != nil {
		h.logger.Error("directory search failed", "error", err)
		http.Error(w, "patient directory unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":    len(resources),
		"patients": resources,
	})
}

// GetDirectoryPatient handles GET /api/fhir/patients/{fhirID} requests
func (h *Handler) GetDirectoryPatient(w http.ResponseWriter, r *http.Request) {
	fhirID := chi.URLParam(r, "fhirID")

	resource, err := h.dir.GetPatient(r.Context(), fhirID)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			http.Error(w, "patient not found in directory", http.StatusNotFound)
			return
		}
		h.logger.Error("directory lookup failed", "fhir_id", fhirID, "error", err)
		http.Error(w, "patient directory unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resource)
}

// Sync handles POST /api/patients/sync/{fhirID} requests
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	fhirID := chi.URLParam(r, "fhirID")

	patient, err := h.service.Sync(r.Context(), fhirID)
	if err != nil {
		h.writeServiceError(w, err, "sync", fhirID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(patient)
}

// Create handles POST /api/patients/create requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patient, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrInvalidLanguage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeServiceError(w, err, "create", req.Name)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(patient)
}

// List handles GET /api/patients requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Patient{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Get handles GET /api/patients/{patientID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	patient, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "patient_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(patient)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, op, subject string) {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		http.Error(w, "patient not found in directory", http.StatusNotFound)
	case errors.Is(err, ErrDirectoryUnavailable):
		h.logger.Error("directory call failed", "op", op, "subject", subject, "error", err)
		http.Error(w, "patient directory unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("patient operation failed", "op", op, "subject", subject, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
