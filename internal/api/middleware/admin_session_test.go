package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubAuthenticator struct {
	email string
	err   error
	token string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	s.token = token
	return s.email, s.err
}

func TestAdminSession_ValidCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: "tok"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	auth := &stubAuthenticator{email: "admin@example.com"}
	called := false
	handler := AdminSession(auth, "admin_session", "/admin-login")(func(c echo.Context) error {
		called = true
		if c.Get("admin_email") != "admin@example.com" {
			t.Fatalf("admin_email not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if auth.token != "tok" {
		t.Fatalf("expected cookie value to be authenticated, got %q", auth.token)
	}
}

func TestAdminSession_MissingCookieRedirects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AdminSession(&stubAuthenticator{}, "admin_session", "/admin-login")(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/admin-login" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAdminSession_InvalidSessionRedirects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: "expired"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AdminSession(&stubAuthenticator{err: errors.New("session is not valid")}, "admin_session", "/admin-login")(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
}
