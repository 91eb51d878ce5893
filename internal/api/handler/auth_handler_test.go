package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/veilchat/chat-server/internal/core/domain"
)

type stubAuthService struct {
	token       string
	identity    *domain.Identity
	registerErr error
	loginErr    error
}

func (s *stubAuthService) Register(_ context.Context, username, email, _ string) (string, *domain.Identity, error) {
	if s.registerErr != nil {
		return "", nil, s.registerErr
	}
	id := s.identity
	if id == nil {
		id = &domain.Identity{ID: "new-user", Username: username, Email: email}
	}
	return s.token, id, nil
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (string, *domain.Identity, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.token, s.identity, nil
}

func newAuthContext(target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{token: "tok-1"})

	c, rec := newAuthContext("/auth/register", `{"username":"alice","email":"alice@example.com","password":"hunter22"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "tok-1" {
		t.Errorf("token = %q, want tok-1", resp.Token)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("user profile = %+v, want alice", resp.User)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{token: "tok-1"})

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"username":"alice","password":"hunter22"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"hunter22"}`},
		{"short password", `{"username":"alice","email":"alice@example.com","password":"abc"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newAuthContext("/auth/register", tc.body)
			err := h.Register(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Errorf("error = %v, want 400", err)
			}
		})
	}
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{registerErr: domain.ErrUserExists})

	c, _ := newAuthContext("/auth/register", `{"username":"alice","email":"alice@example.com","password":"hunter22"}`)
	err := h.Register(c)
	if err != domain.ErrUserExists {
		t.Errorf("Register() error = %v, want ErrUserExists passthrough", err)
	}
}

func TestLoginHandler(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		token:    "tok-2",
		identity: &domain.Identity{ID: "user-1", Username: "bob", Email: "bob@example.com"},
	})

	c, rec := newAuthContext("/auth/login", `{"email":"bob@example.com","password":"s3cret!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "tok-2" || resp.User.ID != "user-1" {
		t.Errorf("unexpected login body: %+v", resp)
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{loginErr: domain.ErrInvalidCredentials})

	c, _ := newAuthContext("/auth/login", `{"email":"bob@example.com","password":"wrong"}`)
	err := h.Login(c)
	if err != domain.ErrInvalidCredentials {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials passthrough", err)
	}
}
