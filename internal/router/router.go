// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/lab-booking/internal/access"
	"github.com/iliyamo/lab-booking/internal/config"
	"github.com/iliyamo/lab-booking/internal/handler"
	"github.com/iliyamo/lab-booking/internal/middleware"
	"github.com/iliyamo/lab-booking/internal/session"
)

// Deps carries everything the routes need.  Redis may be nil, in which
// case rate limiting and the response cache are disabled.
type Deps struct {
	DB        handler.Pinger
	Auth      *handler.AuthHandler
	Bookings  *handler.BookingHandler
	Verifier  *session.Verifier
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	LoginRate config.RateLimitConfig
	Cache     config.CacheConfig
}

// New registers every route on e.
func New(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d)
	RegisterAuth(e, d)
	RegisterBookings(e, d)
	RegisterAdmin(e, d)
}

// RegisterRoutes registers routes that need no session: the health check
// and the cached list of branch locations.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	e.GET("/v1/locations", d.Auth.Locations,
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
		middleware.NewRedisCache(d.Cache, d.Redis))
}

// RegisterAuth registers signup, login, logout and /v1/me.  Login has its
// own, tighter rate limit keyed by client address.
func RegisterAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth", middleware.NewTokenBucket(d.RateLimit, d.Redis))
	g.POST("/signup", d.Auth.Signup)
	g.POST("/login", d.Auth.Login, middleware.NewTokenBucket(d.LoginRate, d.Redis))
	g.POST("/logout", d.Auth.Logout, middleware.OptionalSession(d.Verifier))

	e.GET("/v1/me", d.Auth.Me,
		middleware.SessionGate(d.Verifier),
		middleware.RequireRole(access.Anyone),
		middleware.NewTokenBucket(d.RateLimit, d.Redis))
}
