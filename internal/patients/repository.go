package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/interpreter-booking/internal/directory"
)

// Repository defines the interface for patient cache storage
type Repository interface {
	UpsertFromDirectory(ctx context.Context, demo directory.Demographics, location string) (*Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByFHIRID(ctx context.Context, fhirID string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, error)
}

type patientDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the patient cache in the relational database.
type PostgresRepository struct {
	db patientDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db patientDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const patientColumns = `id, fhir_id, name, location, birthdate, gender, address, phone_number, email, language, created_at, updated_at`

// UpsertFromDirectory caches a directory record locally. The insert is a
// no-op when the fhir_id already exists, so a failed sync can be retried
// with the external identifier as the natural key.
func (r *PostgresRepository) UpsertFromDirectory(ctx context.Context, demo directory.Demographics, location string) (*Patient, error) {
	query := `
		INSERT INTO patients (id, fhir_id, name, location, birthdate, gender, address, phone_number, email, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (fhir_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		uuid.New(),
		demo.FHIRID,
		demo.Name,
		location,
		demo.BirthDate,
		demo.Gender,
		demo.Address,
		demo.PhoneNumber,
		demo.Email,
		demo.Language,
	)
	if err != nil {
		return nil, fmt.Errorf("patients: upsert from directory: %w", err)
	}
	// Re-read regardless of whether this call won the insert race.
	return r.GetByFHIRID(ctx, demo.FHIRID)
}

// GetByID fetches a cached patient by local id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return scanPatient(r.db.QueryRow(ctx, query, id))
}

// GetByFHIRID fetches a cached patient by external identifier.
func (r *PostgresRepository) GetByFHIRID(ctx context.Context, fhirID string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE fhir_id = $1`
	return scanPatient(r.db.QueryRow(ctx, query, fhirID))
}

// List returns a page of cached patients, oldest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Patient, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("patients: list: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: list rows: %w", err)
	}
	return out, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID,
		&p.FHIRID,
		&p.Name,
		&p.Location,
		&p.BirthDate,
		&p.Gender,
		&p.Address,
		&p.PhoneNumber,
		&p.Email,
		&p.Language,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: scan: %w", err)
	}
	return &p, nil
}
