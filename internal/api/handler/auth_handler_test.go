package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			if username != "alice" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.User{ID: 1, Username: username, PasswordHash: "h", Role: domain.RoleUser, IsActive: true}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/auth/register", `{"username":"alice","password":"secret123"}`, nil)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["role"] != "USER" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newContext(http.MethodPost, "/auth/register", `{"username":"alice","password":"other"}`, nil)

	err := NewAuthHandler(stub).Register(c)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	for _, body := range []string{`{"username":"al","password":"x"}`, `{"username":"alice"}`, `{not json`} {
		c, _ := newContext(http.MethodPost, "/auth/register", body, nil)
		expectHTTPError(t, NewAuthHandler(stub).Register(c), http.StatusBadRequest)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 30, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*ports.AccessToken, error) {
			return &ports.AccessToken{AccessToken: "tok", TokenType: ports.TokenTypeBearer, ExpiresAt: expires}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret123"}`, nil)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AccessToken != "tok" || resp.TokenType != "Bearer" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected token response: %+v", resp)
	}
}

func TestAuthHandler_Login_FormEncoded(t *testing.T) {
	var gotUser string
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*ports.AccessToken, error) {
			gotUser = username
			return &ports.AccessToken{AccessToken: "tok", TokenType: ports.TokenTypeBearer}, nil
		},
	}

	form := url.Values{"username": {"alice"}, "password": {"secret123"}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := NewAuthHandler(stub).Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotUser != "alice" {
		t.Fatalf("form username not bound, got %q", gotUser)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrInactiveAccount} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, username, password string) (*ports.AccessToken, error) {
				return nil, want
			},
		}
		c, _ := newContext(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`, nil)

		if err := NewAuthHandler(stub).Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/auth/login", `{"username":"alice"}`, nil)
	expectHTTPError(t, NewAuthHandler(&stubAuthService{}).Login(c), http.StatusBadRequest)
}
