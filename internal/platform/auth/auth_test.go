package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret []byte, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	secret := []byte("test-secret")
	tokenStr := signToken(t, secret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7a4fd1e1-9d2b-4f52-8f5e-1b7f8f3a1c11",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"billing"},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware(JWTConfig{Secret: secret})(func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != "7a4fd1e1-9d2b-4f52-8f5e-1b7f8f3a1c11" {
			t.Error("expected subject on context")
		}
		if roles := RolesFromContext(ctx); len(roles) != 1 || roles[0] != "billing" {
			t.Errorf("expected billing role, got %v", roles)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware(JWTConfig{Secret: []byte("x")})(func(c echo.Context) error { return nil })
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	tokenStr := signToken(t, []byte("other"), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware(JWTConfig{Secret: []byte("expected")})(func(c echo.Context) error { return nil })
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireRole("billing")(func(c echo.Context) error { return nil })
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 without roles, got %v", err)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := DevAuthMiddleware()(func(c echo.Context) error {
		if UserIDFromContext(c.Request().Context()) != DevIssuerID {
			t.Error("expected dev issuer id on context")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
