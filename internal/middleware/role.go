package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/access"
)

// RequireRole returns a middleware that admits only identities whose role
// is in allowed.  It must run after SessionGate; a request without an
// identity is treated as unauthenticated.  Record-level rules such as
// location scoping are enforced later by the services.
func RequireRole(allowed access.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id.IsZero() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			if err := access.Authorize(id, allowed); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
