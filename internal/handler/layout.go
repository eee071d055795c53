package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/service"
)

// LayoutHandler publishes and shows board seat layouts.
type LayoutHandler struct {
	layouts LayoutService
	log     logger.Logger
}

func NewLayoutHandler(layouts LayoutService, log logger.Logger) *LayoutHandler {
	return &LayoutHandler{layouts: layouts, log: log}
}

// layoutReq keeps the raw JSON of each dimension so that both 3 and "3"
// are accepted while 3.5, "abc" or null are rejected.
type layoutReq struct {
	Rows         json.RawMessage `json:"rows"`
	SeatsPerRow  json.RawMessage `json:"seats_per_row"`
	BusinessRows json.RawMessage `json:"business_rows"`
}

func rawDim(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

func (h *LayoutHandler) layoutInput(c echo.Context) (service.LayoutInput, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		return service.ParseLayoutInput(c.FormValue("rows"), c.FormValue("seats_per_row"), c.FormValue("business_rows"))
	}
	var req layoutReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return service.LayoutInput{}, &service.InvalidLayoutError{Field: "body", Reason: "invalid JSON"}
	}
	return service.ParseLayoutInput(rawDim(req.Rows), rawDim(req.SeatsPerRow), rawDim(req.BusinessRows))
}

// Publish handles POST /v1/staff/boards/:id/layouts.
func (h *LayoutHandler) Publish(c echo.Context) error {
	boardID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid board id")
	}
	in, err := h.layoutInput(c)
	if err != nil {
		return writeError(c, h.log, "publish layout", err)
	}
	var by *uint64
	if uid, ok := middleware.UserID(c); ok {
		by = &uid
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	layout, err := h.layouts.Publish(ctx, boardID, in, by)
	if err != nil {
		return writeError(c, h.log, "publish layout", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"layout": layout,
		"seats":  in.Rows * in.SeatsPerRow,
	})
}

type layoutResp struct {
	BoardID uint64            `json:"board_id"`
	Version int               `json:"version"`
	Seats   []model.BoardSeat `json:"seats"`
}

// Current handles GET /v1/boards/:id/layout. A board without a layout
// answers version 0 and no seats.
func (h *LayoutHandler) Current(c echo.Context) error {
	boardID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid board id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	version, seats, err := h.layouts.Current(ctx, boardID)
	if err != nil {
		return writeError(c, h.log, "load layout", err)
	}
	if seats == nil {
		seats = []model.BoardSeat{}
	}
	return c.JSON(http.StatusOK, layoutResp{BoardID: boardID, Version: version, Seats: seats})
}

// Versions handles GET /v1/staff/boards/:id/layouts.
func (h *LayoutHandler) Versions(c echo.Context) error {
	boardID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid board id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.layouts.Versions(ctx, boardID)
	if err != nil {
		return writeError(c, h.log, "list layouts", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Summary handles GET /v1/staff/boards/:id/layout/summary.
func (h *LayoutHandler) Summary(c echo.Context) error {
	boardID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid board id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	sum, err := h.layouts.Summary(ctx, boardID)
	if err != nil {
		return writeError(c, h.log, "layout summary", err)
	}
	return c.JSON(http.StatusOK, sum)
}
