// Package router wires handlers and middleware onto echo routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/osaka-airlines/internal/config"
	"github.com/iliyamo/osaka-airlines/internal/handler"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
)

// Handlers bundles every HTTP handler the API dispatches to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Layouts  *handler.LayoutHandler
	Flights  *handler.FlightHandler
	Bookings *handler.BookingHandler
	Staff    *handler.StaffHandler
}

// Options carries the configuration of the cross-cutting middleware.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       logger.Logger
}

func (o Options) cache() echo.MiddlewareFunc {
	return middleware.ResponseCache(o.Cache, o.Redis, o.Log)
}

func (o Options) limit() echo.MiddlewareFunc {
	return middleware.RateLimit(o.RateLimit, o.Redis, o.Log)
}

// RegisterRoutes registers the operational endpoints: liveness with a
// database ping and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterAuth registers sign-up, login and token rotation under /v1/auth.
// These routes are rate limited per client address.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opts Options) {
	g := e.Group("/v1/auth", opts.limit())
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(opts.JWTSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(opts.JWTSecret))
}

// RegisterPublic registers the anonymous read endpoints. Listings go
// through the response cache.
func RegisterPublic(e *echo.Echo, h Handlers, opts Options) {
	g := e.Group("/v1", opts.cache())
	g.GET("/flights/search", h.Flights.Search)
	g.GET("/find_flights", h.Flights.FindFlights)
	g.GET("/flights/:id", h.Flights.Get)
	g.GET("/flights/:id/seats", h.Flights.SeatMap)
	g.GET("/boards/:id/layout", h.Layouts.Current)
	g.GET("/places", h.Catalog.ListPlaces)
	g.GET("/airports", h.Catalog.ListAirports)
}

// Register mounts every route group.
func Register(e *echo.Echo, h Handlers, opts Options) {
	RegisterAuth(e, h.Auth, opts)
	RegisterPublic(e, h, opts)
	RegisterClient(e, h.Bookings, opts)
	RegisterStaff(e, h, opts)
}
