package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/carebridge/interpreter-booking/internal/directory"
)

func patientRow(id uuid.UUID, fhirID string) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{
		"id", "fhir_id", "name", "location", "birthdate", "gender",
		"address", "phone_number", "email", "language", "created_at", "updated_at",
	}).AddRow(id, fhirID, "Layla Haddad", "", "1984-03-12", "female", "", "", "", "Arabic", now, now)
}

func TestUpsertFromDirectoryInsertsAndReads(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`INSERT INTO patients`).
		WithArgs(pgxmock.AnyArg(), "pat-1", "Layla Haddad", "", "1984-03-12", "female", "", "", "", "Arabic").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT .+ FROM patients WHERE fhir_id = \$1`).
		WithArgs("pat-1").
		WillReturnRows(patientRow(id, "pat-1"))

	repo := NewPostgresRepositoryWithDB(mock)
	patient, err := repo.UpsertFromDirectory(context.Background(), directory.Demographics{
		FHIRID:    "pat-1",
		Name:      "Layla Haddad",
		BirthDate: "1984-03-12",
		Gender:    "female",
		Language:  "Arabic",
	}, "")
	if err != nil {
		t.Fatalf("UpsertFromDirectory failed: %v", err)
	}
	if patient.ID != id || patient.FHIRID != "pat-1" {
		t.Fatalf("unexpected patient: %+v", patient)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertFromDirectoryConflictReturnsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	existing := uuid.New()
	// Conflicting insert affects zero rows; the follow-up read returns the
	// row that won the race.
	mock.ExpectExec(`INSERT INTO patients`).
		WithArgs(pgxmock.AnyArg(), "pat-1", "Layla Haddad", "", "", "", "", "", "", "Arabic").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(`SELECT .+ FROM patients WHERE fhir_id = \$1`).
		WithArgs("pat-1").
		WillReturnRows(patientRow(existing, "pat-1"))

	repo := NewPostgresRepositoryWithDB(mock)
	patient, err := repo.UpsertFromDirectory(context.Background(), directory.Demographics{
		FHIRID:   "pat-1",
		Name:     "Layla Haddad",
		Language: "Arabic",
	}, "")
	if err != nil {
		t.Fatalf("UpsertFromDirectory failed: %v", err)
	}
	if patient.ID != existing {
		t.Fatalf("expected existing row, got %+v", patient)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepositoryWithDB(mock)
	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}
