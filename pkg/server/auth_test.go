package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/readloop/readloop/pkg/errcodes"
	"github.com/stretchr/testify/assert"
)

func newAuthEcho(token string) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	e.Use(TokenAuth(token))
	e.GET("/books", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestTokenAuthRejectsMissingToken(t *testing.T) {
	t.Parallel()

	e := newAuthEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenAuthRejectsWrongToken(t *testing.T) {
	t.Parallel()

	e := newAuthEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer wrong")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenAuthAcceptsToken(t *testing.T) {
	t.Parallel()

	e := newAuthEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenAuthSkipsHealth(t *testing.T) {
	t.Parallel()

	e := newAuthEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenAuthDisabledWhenEmpty(t *testing.T) {
	t.Parallel()

	e := newAuthEcho("")
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
