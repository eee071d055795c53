package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/handler"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/model"
)

// RegisterClient registers the passenger booking endpoints under /v1. All
// routes require a client token and are rate limited per user.
func RegisterClient(e *echo.Echo, b *handler.BookingHandler, opts Options) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(model.RoleClient),
	)
	g.POST("/tickets", b.Book, opts.limit())
	g.POST("/tickets/:id/pay", b.Pay)
	g.POST("/tickets/:id/cancel", b.Cancel)
	g.GET("/me/tickets", b.MyTickets)

	// form-era endpoint names kept for existing clients
	g.POST("/book_flight", b.Book, opts.limit())
	g.POST("/pay_for_flight", b.Pay)
	g.POST("/cancel_flight", b.Cancel)
}
