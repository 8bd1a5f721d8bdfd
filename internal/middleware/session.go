package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/session"
)

// SessionGate returns a middleware that resolves the caller's identity
// from the configured session sources and stores it in the context.
// Requests without a valid session are answered with 401 before reaching
// the handler.
func SessionGate(v *session.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := v.Resolve(c.Request())
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			setSession(c, res)
			return next(c)
		}
	}
}

// OptionalSession resolves every session the request carries and never
// rejects it.  Used on logout, which must work for anonymous callers too.
// The first session becomes the caller identity; all of them are
// available through SessionsFrom.
func OptionalSession(v *session.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			all := v.ResolveAll(c.Request())
			if len(all) > 0 {
				setSession(c, all[0])
				c.Set(sessionsKey, all)
			}
			return next(c)
		}
	}
}
