package interpreters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func interpreterRow(id, loginID uuid.UUID, language string, availability Availability) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{
		"id", "login_id", "name", "phone_number", "email", "language",
		"gender", "gender_preference", "availability_status", "created_at", "updated_at",
	}).AddRow(id, loginID, "Samira Osman", "", "", language, "", "", availability, now, now)
}

func TestCreateWithLoginCommitsBothRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	loginID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "samira", "hashed").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`INSERT INTO interpreters`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Samira Osman", "", "", "Somali", "", "", Available).
		WillReturnRows(interpreterRow(id, loginID, "Somali", Available))
	mock.ExpectCommit()
	mock.ExpectRollback()

	repo := NewPostgresRepositoryWithDB(mock)
	interp, err := repo.CreateWithLogin(context.Background(), "samira", "hashed", &CreateInterpreterRequest{
		Name:     "Samira Osman",
		Language: "Somali",
	})
	if err != nil {
		t.Fatalf("CreateWithLogin failed: %v", err)
	}
	if interp.ID != id || interp.AvailabilityStatus != Available {
		t.Fatalf("unexpected interpreter: %+v", interp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateWithLoginDuplicateUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "samira", "hashed").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	repo := NewPostgresRepositoryWithDB(mock)
	_, err = repo.CreateWithLogin(context.Background(), "samira", "hashed", &CreateInterpreterRequest{
		Name:     "Samira Osman",
		Language: "Somali",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestListAvailableOnlyFiltersStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM interpreters WHERE .+ AND availability_status = 'available'`).
		WithArgs("Somali").
		WillReturnRows(interpreterRow(uuid.New(), uuid.New(), "Somali", Available))

	repo := NewPostgresRepositoryWithDB(mock)
	list, err := repo.List(context.Background(), "Somali", true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Language != "Somali" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestGetByLoginNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	loginID := uuid.New()
	mock.ExpectQuery(`FROM interpreters WHERE login_id = \$1`).
		WithArgs(loginID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepositoryWithDB(mock)
	if _, err := repo.GetByLogin(context.Background(), loginID); !errors.Is(err, ErrInterpreterNotFound) {
		t.Fatalf("expected ErrInterpreterNotFound, got %v", err)
	}
}
