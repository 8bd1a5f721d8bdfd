package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/access"
	"github.com/iliyamo/lab-booking/internal/middleware"
)

// RegisterBookings registers the customer-facing booking endpoints under
// /v1/bookings.  Every route requires a session.  The detail route admits
// any role; the service then applies owner and location rules.
func RegisterBookings(e *echo.Echo, d Deps) {
	g := e.Group("/v1/bookings",
		middleware.SessionGate(d.Verifier),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	)
	customers := middleware.RequireRole(access.Customers)
	g.POST("", d.Bookings.Create, customers)
	g.GET("/mine", d.Bookings.Mine, customers)
	g.GET("/:id", d.Bookings.Get, middleware.RequireRole(access.Anyone))
}
