package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FlightHandler serves flight search, seat maps and staff flight
// management.
type FlightHandler struct {
	flights FlightService
	log     logger.Logger
}

func NewFlightHandler(flights FlightService, log logger.Logger) *FlightHandler {
	return &FlightHandler{flights: flights, log: log}
}

type flightReq struct {
	Name               *string    `json:"name"`
	BoardID            uint64     `json:"board_id"`
	DepartureTime      time.Time  `json:"departure_time"`
	ArrivalTime        time.Time  `json:"arrival_time"`
	DelayTime          *time.Time `json:"delay_time"`
	Gate               *string    `json:"gate"`
	Terminal           *string    `json:"terminal"`
	DepartureAirportID *uint64    `json:"departure_airport_id"`
	ArrivalAirportID   *uint64    `json:"arrival_airport_id"`
	BusinessPriceCents int64      `json:"business_price_cents"`
	EconomyPriceCents  int64      `json:"economy_price_cents"`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (r flightReq) toModel() *model.Flight {
	f := &model.Flight{
		Name:               trimmed(r.Name),
		BoardID:            r.BoardID,
		DepartureTime:      r.DepartureTime.UTC(),
		ArrivalTime:        r.ArrivalTime.UTC(),
		Gate:               trimmed(r.Gate),
		Terminal:           trimmed(r.Terminal),
		DepartureAirportID: r.DepartureAirportID,
		ArrivalAirportID:   r.ArrivalAirportID,
		BusinessPriceCents: r.BusinessPriceCents,
		EconomyPriceCents:  r.EconomyPriceCents,
	}
	if r.DelayTime != nil {
		d := r.DelayTime.UTC()
		f.DelayTime = &d
	}
	return f
}

// parseDay accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseDay(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *FlightHandler) search(c echo.Context, from, to, start, end string) error {
	q := repository.FlightSearchQuery{
		DeparturePlace: strings.TrimSpace(c.QueryParam(from)),
		ArrivalPlace:   strings.TrimSpace(c.QueryParam(to)),
	}
	var err error
	if q.Start, err = parseDay(c.QueryParam(start), false); err != nil {
		return badRequest(c, start+": "+err.Error())
	}
	if q.End, err = parseDay(c.QueryParam(end), true); err != nil {
		return badRequest(c, end+": "+err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.flights.Search(ctx, q)
	if err != nil {
		return writeError(c, h.log, "search flights", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Search handles GET /v1/flights/search?from=&to=&start=&end=.
func (h *FlightHandler) Search(c echo.Context) error {
	return h.search(c, "from", "to", "start", "end")
}

// FindFlights is the legacy GET /v1/find_flights alias.
func (h *FlightHandler) FindFlights(c echo.Context) error {
	return h.search(c, "departure_place", "arrival_place", "start_date", "end_date")
}

func (h *FlightHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid flight id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.flights.Get(ctx, id)
	if err != nil {
		return writeError(c, h.log, "get flight", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flight":           f,
		"duration_minutes": int(f.Duration().Minutes()),
		"progress":         f.Progress(time.Now()),
	})
}

// SeatMap handles GET /v1/flights/:id/seats.
func (h *FlightHandler) SeatMap(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid flight id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	sm, err := h.flights.SeatMap(ctx, id)
	if err != nil {
		return writeError(c, h.log, "seat map", err)
	}
	return c.JSON(http.StatusOK, sm)
}

// Create handles POST /v1/staff/flights. Seats are materialized from the
// board's current layout in the same transaction.
func (h *FlightHandler) Create(c echo.Context) error {
	var req flightReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	f := req.toModel()

	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.flights.Create(ctx, f)
	if err != nil {
		return writeError(c, h.log, "create flight", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"flight": f, "seats_created": n})
}

// List handles GET /v1/staff/flights?board_id=.
func (h *FlightHandler) List(c echo.Context) error {
	boardID, ok := queryID(c, "board_id")
	if !ok {
		return badRequest(c, "invalid board_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.flights.List(ctx, boardID)
	if err != nil {
		return writeError(c, h.log, "list flights", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid flight id")
	}
	var req flightReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	f := req.toModel()
	f.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.flights.Update(ctx, f); err != nil {
		return writeError(c, h.log, "update flight", err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FlightHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid flight id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.flights.Delete(ctx, id); err != nil {
		return writeError(c, h.log, "delete flight", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetSeatStatus handles PATCH /v1/staff/flight-seats/:id with
// {"status": "available"|"disabled"}.
func (h *FlightHandler) SetSeatStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid seat id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	status, ok := model.ParseSeatStatus(req.Status)
	if !ok {
		return badRequest(c, "unknown status")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	seat, err := h.flights.SetSeatStatus(ctx, id, status)
	if err != nil {
		return writeError(c, h.log, "set seat status", err)
	}
	return c.JSON(http.StatusOK, seat)
}

// Tickets handles GET /v1/staff/flights/:id/tickets.
func (h *FlightHandler) Tickets(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid flight id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.flights.Tickets(ctx, id)
	if err != nil {
		return writeError(c, h.log, "list tickets", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Manifest handles GET /v1/staff/flights/:id/manifest.xlsx.
func (h *FlightHandler) Manifest(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid flight id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	data, f, err := h.flights.Manifest(ctx, id)
	if err != nil {
		return writeError(c, h.log, "export manifest", err)
	}
	name := fmt.Sprintf("manifest-%d.xlsx", f.ID)
	if f.Name != nil {
		name = fmt.Sprintf("manifest-%s-%s.xlsx", *f.Name, f.DepartureTime.Format("20060102"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}
