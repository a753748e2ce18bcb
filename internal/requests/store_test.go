package requests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
)

func requestRow(id, patientID, staffID uuid.UUID, interpreterID *uuid.UUID, status Status) *pgxmock.Rows {
	now := time.Now().UTC()
	var acceptedAt *time.Time
	if status == StatusAccepted || status == StatusCompleted {
		acceptedAt = &now
	}
	return pgxmock.NewRows([]string{
		"id", "patient_id", "requested_by", "interpreter_id", "language", "is_stat",
		"delivery_method", "location", "patient_type", "duration_minutes",
		"request_notes", "encounter_notes", "status", "requested_at",
		"accepted_at", "completed_at", "created_at", "updated_at",
	}).AddRow(id, patientID, staffID, interpreterID, "Arabic", false,
		DeliveryOnsite, "", "", 0, "", "", status, now, acceptedAt, nil, now, now)
}

func TestAcceptTxWinnerCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	requestID := uuid.New()
	interpreterID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE interpreters`).
		WithArgs(interpreterID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`UPDATE requests`).
		WithArgs(requestID, interpreterID).
		WillReturnRows(requestRow(requestID, uuid.New(), uuid.New(), &interpreterID, StatusAccepted))
	mock.ExpectCommit()
	mock.ExpectRollback()

	store := NewPostgresStoreWithDB(mock)
	req, err := store.AcceptTx(context.Background(), requestID, interpreterID)
	if err != nil {
		t.Fatalf("AcceptTx failed: %v", err)
	}
	if req.Status != StatusAccepted || req.InterpreterID == nil || *req.InterpreterID != interpreterID {
		t.Fatalf("unexpected request after accept: %+v", req)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAcceptTxInterpreterNotAvailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	interpreterID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE interpreters`).
		WithArgs(interpreterID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	store := NewPostgresStoreWithDB(mock)
	_, err = store.AcceptTx(context.Background(), uuid.New(), interpreterID)
	if !errors.Is(err, ErrInterpreterUnavailable) {
		t.Fatalf("expected ErrInterpreterUnavailable, got %v", err)
	}
}

func TestAcceptTxLoserRollsBackAvailability(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	requestID := uuid.New()
	interpreterID := uuid.New()
	// The availability update succeeds but the request is no longer
	// pending; the rollback must undo the busy flag.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE interpreters`).
		WithArgs(interpreterID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`UPDATE requests`).
		WithArgs(requestID, interpreterID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	store := NewPostgresStoreWithDB(mock)
	_, err = store.AcceptTx(context.Background(), requestID, interpreterID)
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCompleteTxReleasesInterpreter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	requestID := uuid.New()
	interpreterID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE requests`).
		WithArgs(requestID, interpreterID, "went well").
		WillReturnRows(requestRow(requestID, uuid.New(), uuid.New(), &interpreterID, StatusCompleted))
	mock.ExpectExec(`UPDATE interpreters`).
		WithArgs(interpreterID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	store := NewPostgresStoreWithDB(mock)
	req, err := store.CompleteTx(context.Background(), requestID, interpreterID, "went well")
	if err != nil {
		t.Fatalf("CompleteTx failed: %v", err)
	}
	if req.Status != StatusCompleted {
		t.Fatalf("unexpected status: %s", req.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCompleteTxWrongOwnerOrState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	requestID := uuid.New()
	interpreterID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE requests`).
		WithArgs(requestID, interpreterID, "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	store := NewPostgresStoreWithDB(mock)
	_, err = store.CompleteTx(context.Background(), requestID, interpreterID, "")
	if !errors.Is(err, ErrNotAccepted) {
		t.Fatalf("expected ErrNotAccepted, got %v", err)
	}
}

func TestCancelTxOnlyPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	requestID := uuid.New()
	mock.ExpectQuery(`UPDATE requests`).
		WithArgs(requestID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	store := NewPostgresStoreWithDB(mock)
	if _, err := store.CancelTx(context.Background(), requestID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestListPendingOrdering(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`ORDER BY is_stat DESC, requested_at ASC, id ASC`).
		WithArgs("Arabic").
		WillReturnRows(requestRow(uuid.New(), uuid.New(), uuid.New(), nil, StatusPending))

	store := NewPostgresStoreWithDB(mock)
	list, err := store.ListPending(context.Background(), "Arabic")
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 1 || list[0].Status != StatusPending {
		t.Fatalf("unexpected list: %+v", list)
	}
}
