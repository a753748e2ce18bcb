package interpreters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the interface for interpreter profile storage
type Repository interface {
	CreateWithLogin(ctx context.Context, username, passwordHash string, req *CreateInterpreterRequest) (*Interpreter, error)
	Get(ctx context.Context, id uuid.UUID) (*Interpreter, error)
	GetByLogin(ctx context.Context, loginID uuid.UUID) (*Interpreter, error)
	List(ctx context.Context, language string, availableOnly bool) ([]*Interpreter, error)
	UpdateProfile(ctx context.Context, loginID uuid.UUID, req *UpdateProfileRequest) (*Interpreter, error)
}

type interpreterDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores interpreter profiles in the relational database.
type PostgresRepository struct {
	db interpreterDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("interpreters: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db interpreterDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const interpreterColumns = `id, login_id, name, phone_number, email, language, gender, gender_preference, availability_status, created_at, updated_at`

// CreateWithLogin inserts the login account and the interpreter profile in a
// single transaction so a profile never exists without credentials.
func (r *PostgresRepository) CreateWithLogin(ctx context.Context, username, passwordHash string, req *CreateInterpreterRequest) (*Interpreter, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("interpreters: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	loginID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, user_type)
		VALUES ($1, $2, $3, 'interpreter')
	`, loginID, username, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("interpreters: insert login: %w", err)
	}

	id := uuid.New()
	row := tx.QueryRow(ctx, `
		INSERT INTO interpreters (id, login_id, name, phone_number, email, language, gender, gender_preference, availability_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+interpreterColumns+`
	`, id, loginID, req.Name, req.PhoneNumber, req.Email, req.Language, req.Gender, req.GenderPreference, Available)
	interp, err := scanInterpreter(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("interpreters: commit: %w", err)
	}
	return interp, nil
}

// Get fetches an interpreter profile by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Interpreter, error) {
	query := `SELECT ` + interpreterColumns + ` FROM interpreters WHERE id = $1`
	return scanInterpreter(r.db.QueryRow(ctx, query, id))
}

// GetByLogin fetches the profile belonging to a login account.
func (r *PostgresRepository) GetByLogin(ctx context.Context, loginID uuid.UUID) (*Interpreter, error) {
	query := `SELECT ` + interpreterColumns + ` FROM interpreters WHERE login_id = $1`
	return scanInterpreter(r.db.QueryRow(ctx, query, loginID))
}

// List returns interpreter profiles, optionally filtered by exact language
// and by current availability.
func (r *PostgresRepository) List(ctx context.Context, language string, availableOnly bool) ([]*Interpreter, error) {
	query := `SELECT ` + interpreterColumns + ` FROM interpreters WHERE ($1 = '' OR language = $1)`
	if availableOnly {
		query += ` AND availability_status = 'available'`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, language)
	if err != nil {
		return nil, fmt.Errorf("interpreters: list: %w", err)
	}
	defer rows.Close()

	var out []*Interpreter
	for rows.Next() {
		interp, err := scanInterpreter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, interp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interpreters: list rows: %w", err)
	}
	return out, nil
}

// UpdateProfile applies the non-nil fields of the self-service update.
// Nil fields pass NULL and COALESCE keeps the stored value.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, loginID uuid.UUID, req *UpdateProfileRequest) (*Interpreter, error) {
	query := `
		UPDATE interpreters SET
			availability_status = COALESCE($2, availability_status),
			phone_number = COALESCE($3, phone_number),
			email = COALESCE($4, email),
			updated_at = now()
		WHERE login_id = $1
		RETURNING ` + interpreterColumns
	var availability *string
	if req.AvailabilityStatus != nil {
		s := string(*req.AvailabilityStatus)
		availability = &s
	}
	return scanInterpreter(r.db.QueryRow(ctx, query, loginID, availability, req.PhoneNumber, req.Email))
}

func scanInterpreter(row pgx.Row) (*Interpreter, error) {
	var interp Interpreter
	if err := row.Scan(
		&interp.ID,
		&interp.LoginID,
		&interp.Name,
		&interp.PhoneNumber,
		&interp.Email,
		&interp.Language,
		&interp.Gender,
		&interp.GenderPreference,
		&interp.AvailabilityStatus,
		&interp.CreatedAt,
		&interp.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInterpreterNotFound
		}
		return nil, fmt.Errorf("interpreters: scan: %w", err)
	}
	return &interp, nil
}
