// Package handler exposes the airline operations over JSON/HTTP with echo.
// Handlers depend on the small interfaces declared in ports.go and answer
// errors as {"error": "..."}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/service"
)

const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional numeric query parameter; absent means 0.
func queryID(c echo.Context, name string) (uint64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(v, 10, 64)
	return id, err == nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func actor(c echo.Context) (service.Actor, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: middleware.Role(c)}, true
}

var notFound = []error{
	repository.ErrManufacturerNotFound,
	repository.ErrModelNotFound,
	repository.ErrBoardNotFound,
	repository.ErrPlaceNotFound,
	repository.ErrAirportNotFound,
	repository.ErrFlightNotFound,
	repository.ErrFlightSeatNotFound,
	repository.ErrTicketNotFound,
	repository.ErrClientNotFound,
	repository.ErrUserNotFound,
}

var conflict = []error{
	repository.ErrSeatUnavailable,
	repository.ErrVersionConflict,
	repository.ErrConflict,
	repository.ErrLoginExists,
	service.ErrTicketAlreadyPaid,
	service.ErrTicketAlreadyCanceled,
	service.ErrTicketCanceled,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps domain errors to HTTP answers. Unknown errors are logged
// and hidden behind a generic 500.
func writeError(c echo.Context, log logger.Logger, op string, err error) error {
	var (
		layoutErr *service.InvalidLayoutError
		validErr  *service.ValidationError
		matErr    *service.MaterializationError
	)
	switch {
	case errors.As(err, &layoutErr), errors.As(err, &validErr), errors.Is(err, service.ErrInvalidSeatStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case isAny(err, notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case isAny(err, conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, repository.ErrTokenInvalid):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAccountDisabled):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.As(err, &matErr):
		log.Error(op+" failed", "error", err, "board_id", matErr.BoardID, "attempted", matErr.Attempted)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":     "seat materialization failed",
			"attempted": matErr.Attempted,
		})
	}
	log.Error(op+" failed", "error", err, "route", c.Path())
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": op + " failed"})
}
