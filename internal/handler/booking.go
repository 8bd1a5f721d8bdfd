package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/middleware"
	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.  Role checks
// are repeated by the service, so a routing mistake cannot widen access.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type statusReq struct {
	Status model.BookingStatus `json:"status"`
}

// Create handles POST /v1/bookings.  The owner is always the caller and
// the booking always starts pending; the body cannot override either.
func (h *BookingHandler) Create(c echo.Context) error {
	var req model.BookingRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.Create(ctx, middleware.IdentityFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Mine handles GET /v1/bookings/mine.
func (h *BookingHandler) Mine(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Bookings.ListForOwner(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.Get(ctx, middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// AdminList handles GET /v1/admin/bookings.  Sub-admins only receive the
// bookings placed at their own location.
func (h *BookingHandler) AdminList(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Bookings.ListForAdmin(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// UpdateStatus handles PATCH /v1/admin/bookings/:id/status with a body of
// {"status": "accepted"} or {"status": "rejected"}.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, middleware.IdentityFrom(c), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
