package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/config"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
	"taskdeck/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type testMailer struct {
	mu    sync.Mutex
	to    string
	code  string
	calls int
}

func (m *testMailer) SendVerificationCode(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = email
	m.code = code
	m.calls++
	return nil
}

func newTestServer(t *testing.T) (*Server, *testMailer) {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir, "http://test.local")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	cfg := config.Config{
		Env:           "test",
		HTTPAddr:      ":0",
		PublicBaseURL: "http://test.local",
		StorageDir:    dir,
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := &testMailer{}
	return NewServerWithDB(cfg, log, db, store, mailer), mailer
}

// seedUser inserts a verified user directly and returns a valid token.
func seedUser(t *testing.T, s *Server, email string) (*model.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now()
	user := &model.User{
		Name:            "Test User",
		Email:           email,
		Password:        string(hash),
		EmailVerifiedAt: &now,
	}
	users := repository.NewUserRepository(s.db)
	if err := users.CreateWithDefaultList(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := s.Auth().IssueToken(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/tasks", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", w.Code)
	}
	if got := decodeBody(t, w)["message"]; got != "Unauthenticated." {
		t.Errorf("message = %v", got)
	}

	w = doJSON(t, s, http.MethodGet, "/api/tasks", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", w.Code)
	}
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	s, mailer := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", w.Code, w.Body.String())
	}
	if mailer.calls != 1 || mailer.to != "alice@example.com" || len(mailer.code) != 6 {
		t.Fatalf("mailer = %+v", mailer)
	}

	// Wrong code is rejected.
	if mailer.code != "000000" {
		w = doJSON(t, s, http.MethodPost, "/api/email/verify", "", map[string]any{
			"email": "alice@example.com",
			"otp":   "000000",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad otp: status = %d", w.Code)
		}
	}

	w = doJSON(t, s, http.MethodPost, "/api/email/verify", "", map[string]any{
		"email": "alice@example.com",
		"otp":   mailer.code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", w.Code, w.Body.String())
	}
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	token, _ := data["access_token"].(string)
	if token == "" {
		t.Fatalf("no access_token in %s", w.Body.String())
	}

	// The registered user starts with the default list.
	w = doJSON(t, s, http.MethodGet, "/api/task-lists", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("task-lists: status = %d", w.Code)
	}
	lists, _ := decodeBody(t, w)["data"].([]any)
	if len(lists) != 1 {
		t.Fatalf("lists = %v", lists)
	}
	first, _ := lists[0].(map[string]any)
	if first["name"] != model.DefaultListName {
		t.Errorf("default list name = %v", first["name"])
	}

	// Bad credentials are a 401.
	w = doJSON(t, s, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d", w.Code)
	}
}
