package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/model"
)

// RegisterStaff registers the employee endpoints under /v1/staff and
// /v1/admin. Each group admits its job role and administrators.
func RegisterStaff(e *echo.Echo, h Handlers, opts Options) {
	auth := middleware.JWTAuth(opts.JWTSecret)

	// ---- Fleet: board managers ----
	fleet := e.Group("/v1/staff", auth, middleware.RequireRole(model.RoleBoard, model.RoleAdmin))
	fleet.POST("/manufacturers", h.Catalog.CreateManufacturer)
	fleet.GET("/manufacturers", h.Catalog.ListManufacturers)
	fleet.GET("/manufacturers/:id", h.Catalog.GetManufacturer)
	fleet.PUT("/manufacturers/:id", h.Catalog.UpdateManufacturer)
	fleet.DELETE("/manufacturers/:id", h.Catalog.DeleteManufacturer)

	fleet.POST("/models", h.Catalog.CreateModel)
	fleet.GET("/models", h.Catalog.ListModels)
	fleet.GET("/models/:id", h.Catalog.GetModel)
	fleet.PUT("/models/:id", h.Catalog.UpdateModel)
	fleet.DELETE("/models/:id", h.Catalog.DeleteModel)

	fleet.POST("/boards", h.Catalog.CreateBoard)
	fleet.GET("/boards", h.Catalog.ListBoards)
	fleet.GET("/boards/:id", h.Catalog.GetBoard)
	fleet.PUT("/boards/:id", h.Catalog.UpdateBoard)
	fleet.DELETE("/boards/:id", h.Catalog.DeleteBoard)

	fleet.POST("/boards/:id/layouts", h.Layouts.Publish)
	fleet.GET("/boards/:id/layouts", h.Layouts.Versions)
	fleet.GET("/boards/:id/layout/summary", h.Layouts.Summary)

	// ---- Network and schedule: flight managers ----
	ops := e.Group("/v1/staff", auth, middleware.RequireRole(model.RoleFlight, model.RoleAdmin))
	ops.POST("/places", h.Catalog.CreatePlace)
	ops.PUT("/places/:id", h.Catalog.UpdatePlace)
	ops.DELETE("/places/:id", h.Catalog.DeletePlace)

	ops.POST("/airports", h.Catalog.CreateAirport)
	ops.PUT("/airports/:id", h.Catalog.UpdateAirport)
	ops.DELETE("/airports/:id", h.Catalog.DeleteAirport)

	ops.POST("/flights", h.Flights.Create)
	ops.GET("/flights", h.Flights.List)
	ops.PUT("/flights/:id", h.Flights.Update)
	ops.DELETE("/flights/:id", h.Flights.Delete)
	ops.PATCH("/flight-seats/:id", h.Flights.SetSeatStatus)
	ops.GET("/flights/:id/tickets", h.Flights.Tickets)

	// ---- Revenue ----
	revenue := e.Group("/v1/staff", auth, middleware.RequireRole(model.RoleRevenue, model.RoleAdmin))
	revenue.GET("/flights/:id/manifest.xlsx", h.Flights.Manifest)

	// ---- Ticket desk: any employee ----
	desk := e.Group("/v1/staff/tickets", auth,
		middleware.RequireRole(model.RoleAdmin, model.RoleRevenue, model.RoleFlight, model.RoleBoard))
	desk.POST("/:id/pay", h.Bookings.Pay)
	desk.POST("/:id/cancel", h.Bookings.Cancel)

	// ---- Accounts ----
	admin := e.Group("/v1/admin", auth, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.Staff.List)
	admin.POST("/users", h.Staff.Create)
	admin.PATCH("/users/:id/role", h.Staff.AssignRole)
}
