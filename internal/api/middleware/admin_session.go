package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionAuthenticator resolves a session token to the admin email it belongs to.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AdminSession lets a request through only when the session cookie holds a
// live admin session; the admin email is stored under "admin_email". Any other
// request is redirected to loginPath.
func AdminSession(auth SessionAuthenticator, cookieName, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusFound, loginPath)
			}

			email, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.Redirect(http.StatusFound, loginPath)
			}

			c.Set("admin_email", email)
			return next(c)
		}
	}
}
