package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/interpreter-booking/internal/identity"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) Create(ctx context.Context, username, passwordHash, userType string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[username]; exists {
		return nil, ErrUsernameTaken
	}
	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		UserType:     userType,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.users[username] = user
	return user, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func newTestHandler() (*Handler, *fakeRepo) {
	repo := newFakeRepo()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	return NewHandler(repo, issuer, logging.Default()), repo
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	handler, _ := newTestHandler()

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Username: "staff1",
		Password: "password123",
		UserType: RoleStaff,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	var created User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if created.Username != "staff1" || created.UserType != RoleStaff {
		t.Fatalf("unexpected user: %+v", created)
	}

	rec = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Username: "staff1",
		Password: "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "bearer" || resp.UserType != RoleStaff {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	handler, _ := newTestHandler()

	body := RegisterRequest{Username: "dup", Password: "password123", UserType: RoleInterpreter}
	if rec := postJSON(t, handler.Register, "/api/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	if rec := postJSON(t, handler.Register, "/api/auth/register", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d, want 400", rec.Code)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	handler, _ := newTestHandler()

	tests := []RegisterRequest{
		{Username: "", Password: "password123", UserType: RoleStaff},
		{Username: "u", Password: "short", UserType: RoleStaff},
		{Username: "u", Password: "password123", UserType: "superuser"},
	}
	for _, tc := range tests {
		if rec := postJSON(t, handler.Register, "/api/auth/register", tc); rec.Code != http.StatusBadRequest {
			t.Errorf("register %+v: status = %d, want 400", tc, rec.Code)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler, _ := newTestHandler()

	postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Username: "carla",
		Password: "password123",
		UserType: RoleStaff,
	})

	rec := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{Username: "carla", Password: "nope-nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	handler, _ := newTestHandler()
	rec := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{Username: "ghost", Password: "password123"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	handler, repo := newTestHandler()
	hash, _ := HashPassword("password123")
	user, err := repo.Create(context.Background(), "iris", hash, RoleInterpreter)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(identity.WithUser(req.Context(), identity.User{ID: user.ID, Role: user.UserType}))
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", rec.Code, rec.Body.String())
	}
	var got User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if got.ID != user.ID || got.Username != "iris" {
		t.Fatalf("unexpected me response: %+v", got)
	}
	if rec.Body.String() != "" && bytes.Contains(rec.Body.Bytes(), []byte(hash)) {
		t.Fatal("password hash leaked in response")
	}
}

func TestMeUnauthenticated(t *testing.T) {
	handler, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me status = %d, want 401", rec.Code)
	}
}
