package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
)

// BookingHandler books, pays and cancels tickets for the caller.
type BookingHandler struct {
	bookings BookingService
	log      logger.Logger
}

func NewBookingHandler(bookings BookingService, log logger.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, log: log}
}

type bookReq struct {
	FlightSeatID uint64 `json:"flight_seat_id" form:"flight_seat_id"`
}

type ticketReq struct {
	TicketID uint64 `json:"ticket_id" form:"ticket_id"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// Book handles POST /v1/tickets and the legacy POST /v1/book_flight.
func (h *BookingHandler) Book(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req bookReq
	if err := c.Bind(&req); err != nil || req.FlightSeatID == 0 {
		return badRequest(c, "flight_seat_id required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.bookings.Book(ctx, a, req.FlightSeatID)
	if err != nil {
		return writeError(c, h.log, "book seat", err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ticketID reads the ticket from the :id path parameter, falling back to
// the ticket_id body field used by the legacy endpoints.
func ticketID(c echo.Context) (uint64, bool) {
	if c.Param("id") != "" {
		return pathID(c, "id")
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return 0, false
	}
	return req.TicketID, req.TicketID > 0
}

// Pay handles POST /v1/tickets/:id/pay and the legacy POST /v1/pay_for_flight.
func (h *BookingHandler) Pay(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := ticketID(c)
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.bookings.Pay(ctx, a, id)
	if err != nil {
		return writeError(c, h.log, "pay ticket", err)
	}
	return c.JSON(http.StatusOK, t)
}

// Cancel handles POST /v1/tickets/:id/cancel and the legacy
// POST /v1/cancel_flight.
func (h *BookingHandler) Cancel(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := ticketID(c)
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.bookings.Cancel(ctx, a, id)
	if err != nil {
		return writeError(c, h.log, "cancel ticket", err)
	}
	return c.JSON(http.StatusOK, t)
}

// MyTickets handles GET /v1/me/tickets.
func (h *BookingHandler) MyTickets(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.bookings.ClientTickets(ctx, a)
	if err != nil {
		return writeError(c, h.log, "list tickets", err)
	}
	return c.JSON(http.StatusOK, out)
}
