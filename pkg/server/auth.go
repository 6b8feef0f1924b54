package server

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/readloop/readloop/pkg/errcodes"
)

// TokenAuth guards every route with a static bearer token. The health
// endpoint stays open for probes, and an empty configured token disables the
// check entirely, which is the expected mode for local development.
func TokenAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" || strings.HasPrefix(c.Path(), "/health") {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			provided, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return errcodes.Unauthorized("Authentication required")
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				return errcodes.Unauthorized("Invalid token")
			}

			return next(c)
		}
	}
}
