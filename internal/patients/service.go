package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/carebridge/interpreter-booking/internal/directory"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

// DirectoryClient is the slice of the directory adapter the service uses.
type DirectoryClient interface {
	GetPatient(ctx context.Context, fhirID string) (*directory.Resource, error)
	SearchPatients(ctx context.Context, name, language string, count int) ([]directory.Resource, error)
	CreatePatient(ctx context.Context, demo directory.Demographics) (*directory.Resource, error)
}

// ErrDirectoryUnavailable wraps upstream directory failures.
var ErrDirectoryUnavailable = errors.New("patient directory unavailable")

// Service syncs patients from the external directory into the local cache.
type Service struct {
	dir    DirectoryClient
	repo   Repository
	logger *logging.Logger
}

// NewService constructs a patients service.
func NewService(dir DirectoryClient, repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("patients: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{dir: dir, repo: repo, logger: logger}
}

// Sync caches the directory record for fhirID locally. Returns the existing
// row without a directory round trip when already cached.
func (s *Service) Sync(ctx context.Context, fhirID string) (*Patient, error) {
	if existing, err := s.repo.GetByFHIRID(ctx, fhirID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrPatientNotFound) {
		return nil, err
	}

	resource, err := s.dir.GetPatient(ctx, fhirID)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	patient, err := s.repo.UpsertFromDirectory(ctx, directory.Flatten(resource), "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("patient synced from directory", "fhir_id", fhirID, "patient_id", patient.ID)
	return patient, nil
}

// Create creates the patient in the directory first, then caches it locally.
// If the local step fails the directory record survives; calling Sync with
// the returned external id (or Create again) completes the cache idempotently.
func (s *Service) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resource, err := s.dir.CreatePatient(ctx, directory.Demographics{
		Name:        req.Name,
		BirthDate:   req.BirthDate,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
		Language:    req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	patient, err := s.repo.UpsertFromDirectory(ctx, directory.Flatten(resource), req.Location)
	if err != nil {
		s.logger.Error("patient created in directory but local sync failed",
			"fhir_id", resource.ID, "error", err)
		return nil, err
	}
	s.logger.Info("patient created", "fhir_id", resource.ID, "patient_id", patient.ID)
	return patient, nil
}
