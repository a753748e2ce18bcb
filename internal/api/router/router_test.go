package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/carebridge/interpreter-booking/internal/auth"
	"github.com/carebridge/interpreter-booking/internal/dashboard"
	"github.com/carebridge/interpreter-booking/internal/http/handlers"
	"github.com/carebridge/interpreter-booking/internal/interpreters"
	"github.com/carebridge/interpreter-booking/internal/matching"
	"github.com/carebridge/interpreter-booking/internal/patients"
	"github.com/carebridge/interpreter-booking/internal/requests"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

// buildTestRouter wires real handlers over a mock database. The gating
// tests are rejected by middleware before any query runs.
func buildTestRouter(t *testing.T, issuer *auth.TokenIssuer) http.Handler {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	logger := logging.Default()
	interpreterRepo := interpreters.NewPostgresRepositoryWithDB(mock)
	patientRepo := patients.NewPostgresRepositoryWithDB(mock)
	store := requests.NewPostgresStoreWithDB(mock)
	engine := matching.NewEngine(store, interpreterRepo, patientRepo, nil, logger)

	return New(&Config{
		Logger:              logger,
		TokenIssuer:         issuer,
		AuthHandler:         auth.NewHandler(auth.NewPostgresRepositoryWithDB(mock), issuer, logger),
		InterpretersHandler: interpreters.NewHandler(interpreterRepo, logger),
		RequestsHandler:     handlers.NewRequestsHandler(engine, store, interpreterRepo, patientRepo, logger),
		DashboardHandler:    dashboard.NewStatsHandler(dashboard.NewStatsRepositoryWithDB(mock), nil, time.Minute, logger),
	})
}

func testToken(t *testing.T, issuer *auth.TokenIssuer, role string) string {
	t.Helper()
	token, err := issuer.Issue(&auth.User{ID: uuid.New(), UserType: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestRouterGating(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := buildTestRouter(t, issuer)

	staffToken := testToken(t, issuer, auth.RoleStaff)
	interpreterToken := testToken(t, issuer, auth.RoleInterpreter)
	adminToken := testToken(t, issuer, auth.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"staff route without token", http.MethodPost, "/api/requests", "", http.StatusUnauthorized},
		{"staff route with garbage token", http.MethodGet, "/api/requests", "not-a-jwt", http.StatusUnauthorized},
		{"interpreter route with staff token", http.MethodGet, "/api/interpreter/requests/pending", staffToken, http.StatusForbidden},
		{"staff route with interpreter token", http.MethodGet, "/api/dashboard/stats", interpreterToken, http.StatusForbidden},
		{"admin passes staff gate", http.MethodGet, "/api/requests/not-a-uuid", adminToken, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", staffToken, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rec.Code)
			}
		})
	}
}

func TestRouterRejectsForgedToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	forger := auth.NewTokenIssuer("other-secret", time.Hour)
	handler := buildTestRouter(t, issuer)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, forger, auth.RoleStaff))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}
}
