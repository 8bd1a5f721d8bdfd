package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/access"
	"github.com/iliyamo/lab-booking/internal/middleware"
)

// RegisterAdmin registers staff endpoints under /v1/admin.  Booking
// review is open to admins and sub-admins; sub-admin management is
// admin only.
func RegisterAdmin(e *echo.Echo, d Deps) {
	g := e.Group("/v1/admin",
		middleware.SessionGate(d.Verifier),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	)

	staff := middleware.RequireRole(access.Staff)
	g.GET("/bookings", d.Bookings.AdminList, staff)
	g.PATCH("/bookings/:id/status", d.Bookings.UpdateStatus, staff)

	admins := middleware.RequireRole(access.Admins)
	g.POST("/sub-admins", d.Auth.CreateSubAdmin, admins)
	g.GET("/sub-admins", d.Auth.ListSubAdmins, admins)
}
