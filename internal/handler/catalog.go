package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/model"
)

// CatalogHandler serves the fleet catalog (manufacturers, models, boards)
// and the route network (places, airports).
type CatalogHandler struct {
	manufacturers ManufacturerStore
	models        ModelStore
	boards        BoardStore
	places        PlaceStore
	airports      AirportStore
	log           logger.Logger
}

func NewCatalogHandler(manufacturers ManufacturerStore, models ModelStore, boards BoardStore,
	places PlaceStore, airports AirportStore, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		manufacturers: manufacturers, models: models, boards: boards,
		places: places, airports: airports, log: log,
	}
}

type manufacturerReq struct {
	Name string `json:"name"`
}

type modelReq struct {
	ManufacturerID *uint64 `json:"manufacturer_id"`
	Name           string  `json:"name"`
}

type boardReq struct {
	ModelID     *uint64 `json:"model_id"`
	BoardNumber string  `json:"board_number"`
	Year        int     `json:"year"`
}

type placeReq struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type airportReq struct {
	PlaceID  uint64 `json:"place_id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

func (r manufacturerReq) toModel() (*model.Manufacturer, string) {
	name := strings.TrimSpace(r.Name)
	if name == "" || len(name) > 100 {
		return nil, "name is required (max 100 characters)"
	}
	return &model.Manufacturer{Name: name}, ""
}

func (r modelReq) toModel() (*model.AircraftModel, string) {
	name := strings.TrimSpace(r.Name)
	if name == "" || len(name) > 100 {
		return nil, "name is required (max 100 characters)"
	}
	return &model.AircraftModel{ManufacturerID: r.ManufacturerID, Name: name}, ""
}

func (r boardReq) toModel() (*model.Board, string) {
	number := strings.ToUpper(strings.TrimSpace(r.BoardNumber))
	switch {
	case number == "" || len(number) > 50:
		return nil, "board_number is required (max 50 characters)"
	case r.Year < 1900 || r.Year > 2100:
		return nil, "year is out of range"
	}
	return &model.Board{ModelID: r.ModelID, BoardNumber: number, Year: r.Year}, ""
}

func (r placeReq) toModel() (*model.Place, string) {
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "" || len(name) > 100:
		return nil, "name is required (max 100 characters)"
	case r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180:
		return nil, "coordinates are out of range"
	}
	return &model.Place{Name: name, Latitude: r.Latitude, Longitude: r.Longitude}, ""
}

func (r airportReq) toModel() (*model.Airport, string) {
	name := strings.ToUpper(strings.TrimSpace(r.Name))
	switch {
	case r.PlaceID == 0:
		return nil, "place_id is required"
	case name == "" || len(name) > 100:
		return nil, "name is required (max 100 characters)"
	}
	return &model.Airport{PlaceID: r.PlaceID, Name: name, FullName: strings.TrimSpace(r.FullName)}, ""
}

// ---- Manufacturers ----

func (h *CatalogHandler) CreateManufacturer(c echo.Context) error {
	var req manufacturerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, msg := req.toModel()
	if m == nil {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.manufacturers.Create(ctx, m); err != nil {
		return writeError(c, h.log, "create manufacturer", err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CatalogHandler) ListManufacturers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.manufacturers.List(ctx)
	if err != nil {
		return writeError(c, h.log, "list manufacturers", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetManufacturer(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.manufacturers.GetByID(ctx, id)
	if err != nil {
		return writeError(c, h.log, "get manufacturer", err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CatalogHandler) UpdateManufacturer(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req manufacturerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, msg := req.toModel()
	if m == nil {
		return badRequest(c, msg)
	}
	m.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.manufacturers.Update(ctx, m); err != nil {
		return writeError(c, h.log, "update manufacturer", err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CatalogHandler) DeleteManufacturer(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.manufacturers.SoftDelete(ctx, id); err != nil {
		return writeError(c, h.log, "delete manufacturer", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Aircraft models ----

func (h *CatalogHandler) CreateModel(c echo.Context) error {
	var req modelReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, msg := req.toModel()
	if m == nil {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.models.Create(ctx, m); err != nil {
		return writeError(c, h.log, "create model", err)
	}
	return c.JSON(http.StatusCreated, m)
}

// ListModels accepts an optional ?manufacturer_id filter.
func (h *CatalogHandler) ListModels(c echo.Context) error {
	manufacturerID, ok := queryID(c, "manufacturer_id")
	if !ok {
		return badRequest(c, "invalid manufacturer_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.models.List(ctx, manufacturerID)
	if err != nil {
		return writeError(c, h.log, "list models", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetModel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.models.GetByID(ctx, id)
	if err != nil {
		return writeError(c, h.log, "get model", err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CatalogHandler) UpdateModel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req modelReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, msg := req.toModel()
	if m == nil {
		return badRequest(c, msg)
	}
	m.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.models.Update(ctx, m); err != nil {
		return writeError(c, h.log, "update model", err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CatalogHandler) DeleteModel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.models.SoftDelete(ctx, id); err != nil {
		return writeError(c, h.log, "delete model", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Boards ----

func (h *CatalogHandler) CreateBoard(c echo.Context) error {
	var req boardReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b, msg := req.toModel()
	if b == nil {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.boards.Create(ctx, b); err != nil {
		return writeError(c, h.log, "create board", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// ListBoards accepts an optional ?model_id filter.
func (h *CatalogHandler) ListBoards(c echo.Context) error {
	modelID, ok := queryID(c, "model_id")
	if !ok {
		return badRequest(c, "invalid model_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.boards.List(ctx, modelID)
	if err != nil {
		return writeError(c, h.log, "list boards", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetBoard(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.boards.GetByID(ctx, id)
	if err != nil {
		return writeError(c, h.log, "get board", err)
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateBoard changes descriptive fields only. Capacity follows the
// published layout.
func (h *CatalogHandler) UpdateBoard(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req boardReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b, msg := req.toModel()
	if b == nil {
		return badRequest(c, msg)
	}
	b.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.boards.Update(ctx, b); err != nil {
		return writeError(c, h.log, "update board", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) DeleteBoard(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.boards.SoftDelete(ctx, id); err != nil {
		return writeError(c, h.log, "delete board", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Places ----

func (h *CatalogHandler) CreatePlace(c echo.Context) error {
	var req placeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, msg := req.toModel()
	if p == nil {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.places.Create(ctx, p); err != nil {
		return writeError(c, h.log, "create place", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) ListPlaces(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.places.List(ctx)
	if err != nil {
		return writeError(c, h.log, "list places", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) UpdatePlace(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req placeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, msg := req.toModel()
	if p == nil {
		return badRequest(c, msg)
	}
	p.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.places.Update(ctx, p); err != nil {
		return writeError(c, h.log, "update place", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) DeletePlace(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.places.SoftDelete(ctx, id); err != nil {
		return writeError(c, h.log, "delete place", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Airports ----

func (h *CatalogHandler) CreateAirport(c echo.Context) error {
	var req airportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	a, msg := req.toModel()
	if a == nil {
		return badRequest(c, msg)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.places.GetByID(ctx, a.PlaceID); err != nil {
		return writeError(c, h.log, "create airport", err)
	}
	if err := h.airports.Create(ctx, a); err != nil {
		return writeError(c, h.log, "create airport", err)
	}
	return c.JSON(http.StatusCreated, a)
}

// ListAirports accepts an optional ?place_id filter.
func (h *CatalogHandler) ListAirports(c echo.Context) error {
	placeID, ok := queryID(c, "place_id")
	if !ok {
		return badRequest(c, "invalid place_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.airports.List(ctx, placeID)
	if err != nil {
		return writeError(c, h.log, "list airports", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) UpdateAirport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req airportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	a, msg := req.toModel()
	if a == nil {
		return badRequest(c, msg)
	}
	a.ID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.airports.Update(ctx, a); err != nil {
		return writeError(c, h.log, "update airport", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *CatalogHandler) DeleteAirport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.airports.SoftDelete(ctx, id); err != nil {
		return writeError(c, h.log, "delete airport", err)
	}
	return c.NoContent(http.StatusNoContent)
}
