package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines the record-store operations the matching engine needs.
type Store interface {
	Create(ctx context.Context, req *SubmitRequest, requestedBy uuid.UUID) (*Request, error)
	Get(ctx context.Context, id uuid.UUID) (*Request, error)
	ListPending(ctx context.Context, language string) ([]*Request, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*Request, error)
	ListAcceptedByInterpreter(ctx context.Context, interpreterID uuid.UUID) ([]*Request, error)
	AcceptTx(ctx context.Context, requestID, interpreterID uuid.UUID) (*Request, error)
	CompleteTx(ctx context.Context, requestID, interpreterID uuid.UUID, encounterNotes string) (*Request, error)
	CancelTx(ctx context.Context, requestID uuid.UUID) (*Request, error)
}

type requestDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores requests in the relational database. The accept and
// complete transitions are conditional updates inside one transaction, so
// concurrent callers race on row versions instead of taking explicit locks.
type PostgresStore struct {
	db requestDB
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("requests: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting a mock database for testing.
func NewPostgresStoreWithDB(db requestDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, patient_id, requested_by, interpreter_id, language, is_stat, delivery_method, location, patient_type, duration_minutes, request_notes, encounter_notes, status, requested_at, accepted_at, completed_at, created_at, updated_at`

// Create persists a new pending request. Language must already be
// resolved by the caller.
func (s *PostgresStore) Create(ctx context.Context, req *SubmitRequest, requestedBy uuid.UUID) (*Request, error) {
	query := `
		INSERT INTO requests (id, patient_id, requested_by, language, is_stat, delivery_method, location, patient_type, duration_minutes, request_notes, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', now())
		RETURNING ` + requestColumns
	row := s.db.QueryRow(ctx, query,
		uuid.New(),
		req.PatientID,
		requestedBy,
		req.Language,
		req.IsStat,
		req.DeliveryMethod,
		req.Location,
		req.PatientType,
		req.DurationMinutes,
		req.RequestNotes,
	)
	return scanRequest(row)
}

// Get fetches a request by id.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	return scanRequest(s.db.QueryRow(ctx, query, id))
}

// ListPending returns the pending queue for a language: STAT requests
// first, then oldest first, with id as the final tie-break so the order
// is deterministic.
func (s *PostgresStore) ListPending(ctx context.Context, language string) ([]*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE status = 'pending' AND ($1 = '' OR language = $1)
		ORDER BY is_stat DESC, requested_at ASC, id ASC
	`
	return s.queryRequests(ctx, query, language)
}

// List returns requests newest first, optionally filtered by status.
func (s *PostgresStore) List(ctx context.Context, status Status, limit, offset int) ([]*Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY requested_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return s.queryRequests(ctx, query, string(status), limit, offset)
}

// ListAcceptedByInterpreter returns the interpreter's in-flight work.
func (s *PostgresStore) ListAcceptedByInterpreter(ctx context.Context, interpreterID uuid.UUID) ([]*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE interpreter_id = $1 AND status = 'accepted'
		ORDER BY accepted_at ASC
	`
	return s.queryRequests(ctx, query, interpreterID)
}

// AcceptTx atomically consumes the interpreter's availability and assigns
// the request. Both updates are conditional; zero affected rows means the
// precondition no longer holds, the transaction rolls back, and the caller
// observes no state change.
func (s *PostgresStore) AcceptTx(ctx context.Context, requestID, interpreterID uuid.UUID) (*Request, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("requests: begin accept: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE interpreters
		SET availability_status = 'busy', updated_at = now()
		WHERE id = $1 AND availability_status = 'available'
	`, interpreterID)
	if err != nil {
		return nil, fmt.Errorf("requests: mark interpreter busy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrInterpreterUnavailable
	}

	row := tx.QueryRow(ctx, `
		UPDATE requests
		SET status = 'accepted', interpreter_id = $2, accepted_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns, requestID, interpreterID)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			// The request exists but is no longer pending, or was deleted.
			// Either way this caller lost the transition.
			return nil, ErrNotPending
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("requests: commit accept: %w", err)
	}
	return req, nil
}

// CompleteTx finalizes an accepted request owned by the interpreter and
// releases the interpreter back to available. The availability reset is
// unconditional regardless of the interpreter's current state.
func (s *PostgresStore) CompleteTx(ctx context.Context, requestID, interpreterID uuid.UUID, encounterNotes string) (*Request, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("requests: begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE requests
		SET status = 'completed',
			completed_at = now(),
			encounter_notes = COALESCE(NULLIF($3, ''), encounter_notes),
			updated_at = now()
		WHERE id = $1 AND interpreter_id = $2 AND status = 'accepted'
		RETURNING `+requestColumns, requestID, interpreterID, encounterNotes)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return nil, ErrNotAccepted
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE interpreters
		SET availability_status = 'available', updated_at = now()
		WHERE id = $1
	`, interpreterID); err != nil {
		return nil, fmt.Errorf("requests: release interpreter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("requests: commit complete: %w", err)
	}
	return req, nil
}

// CancelTx cancels a request that is still pending. Accepted requests
// cannot be cancelled; they are completed by their interpreter.
func (s *PostgresStore) CancelTx(ctx context.Context, requestID uuid.UUID) (*Request, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE requests
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns, requestID)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return nil, ErrNotPending
		}
		return nil, err
	}
	return req, nil
}

func (s *PostgresStore) queryRequests(ctx context.Context, query string, args ...any) ([]*Request, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("requests: query: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("requests: rows: %w", err)
	}
	return out, nil
}

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	if err := row.Scan(
		&req.ID,
		&req.PatientID,
		&req.RequestedBy,
		&req.InterpreterID,
		&req.Language,
		&req.IsStat,
		&req.DeliveryMethod,
		&req.Location,
		&req.PatientType,
		&req.DurationMinutes,
		&req.RequestNotes,
		&req.EncounterNotes,
		&req.Status,
		&req.RequestedAt,
		&req.AcceptedAt,
		&req.CompletedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("requests: scan: %w", err)
	}
	return &req, nil
}
