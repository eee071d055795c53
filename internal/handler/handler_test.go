package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/service"
	"github.com/iliyamo/osaka-airlines/internal/utils"
)

const secret = "handler-secret"

func authHeader(t *testing.T, userID uint64, role model.Role) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, userID, role, 15, time.Now())
	require.NoError(t, err)
	return "Bearer " + at.Token
}

func do(e *echo.Echo, method, path, body, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid layout", &service.InvalidLayoutError{Field: "rows", Reason: "must be positive"}, http.StatusBadRequest},
		{"validation", &service.ValidationError{Msg: "bad"}, http.StatusBadRequest},
		{"seat status", service.ErrInvalidSeatStatus, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("load: %w", repository.ErrFlightNotFound), http.StatusNotFound},
		{"board not found", repository.ErrBoardNotFound, http.StatusNotFound},
		{"seat taken", repository.ErrSeatUnavailable, http.StatusConflict},
		{"version conflict", repository.ErrVersionConflict, http.StatusConflict},
		{"already paid", service.ErrTicketAlreadyPaid, http.StatusConflict},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"refresh token", repository.ErrTokenInvalid, http.StatusUnauthorized},
		{"disabled", service.ErrAccountDisabled, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/x", func(c echo.Context) error { return writeError(c, logger.Nop(), "do thing", tc.err) })
			rec := do(e, http.MethodGet, "/x", "", "")
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	t.Run("internal errors are hidden", func(t *testing.T) {
		e := echo.New()
		e.GET("/x", func(c echo.Context) error {
			return writeError(c, logger.Nop(), "do thing", errors.New("dial tcp 10.0.0.3:3306"))
		})
		rec := do(e, http.MethodGet, "/x", "", "")
		assert.JSONEq(t, `{"error":"do thing failed"}`, rec.Body.String())
	})

	t.Run("materialization reports attempted seats", func(t *testing.T) {
		e := echo.New()
		e.GET("/x", func(c echo.Context) error {
			return writeError(c, logger.Nop(), "create flight",
				&service.MaterializationError{BoardID: 4, Attempted: 6, Err: errors.New("deadlock")})
		})
		rec := do(e, http.MethodGet, "/x", "", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"seat materialization failed","attempted":6}`, rec.Body.String())
	})
}

func TestPathAndQueryIDs(t *testing.T) {
	e := echo.New()
	e.GET("/boards/:id", func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badRequest(c, "invalid")
		}
		q, ok := queryID(c, "model_id")
		if !ok {
			return badRequest(c, "invalid")
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id, "model_id": q})
	})

	rec := do(e, http.MethodGet, "/boards/12?model_id=3", "", "")
	assert.JSONEq(t, `{"id":12,"model_id":3}`, rec.Body.String())
	rec = do(e, http.MethodGet, "/boards/12", "", "")
	assert.JSONEq(t, `{"id":12,"model_id":0}`, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/boards/0", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/boards/-1", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/boards/1?model_id=x", "", "").Code)
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(_ context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/ok", Health(failingPinger{}))
	e.GET("/down", Health(failingPinger{err: errors.New("refused")}))

	rec := do(e, http.MethodGet, "/ok", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(e, http.MethodGet, "/down", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCatalogBoards(t *testing.T) {
	boards := new(mockBoards)
	h := NewCatalogHandler(nil, nil, boards, nil, nil, logger.Nop())
	e := echo.New()
	e.POST("/boards", h.CreateBoard)

	boards.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Board) bool {
		return b.BoardNumber == "JA-801A" && b.Year == 2019
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Board).ID = 8
	}).Return(nil).Once()

	rec := do(e, http.MethodPost, "/boards", `{"board_number":" ja-801a ","year":2019}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":8`)
	assert.Contains(t, rec.Body.String(), `"board_number":"JA-801A"`)

	rec = do(e, http.MethodPost, "/boards", `{"board_number":"JA-1","year":1850}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	boards.On("Create", mock.Anything, mock.Anything).Return(repository.ErrConflict).Once()
	rec = do(e, http.MethodPost, "/boards", `{"board_number":"JA-801A","year":2019}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	boards.AssertExpectations(t)
}

func TestCatalogAirportNeedsPlace(t *testing.T) {
	places := new(mockPlaces)
	airports := new(mockAirports)
	h := NewCatalogHandler(nil, nil, nil, places, airports, logger.Nop())
	e := echo.New()
	e.POST("/airports", h.CreateAirport)

	places.On("GetByID", mock.Anything, uint64(9)).Return(nil, repository.ErrPlaceNotFound).Once()
	rec := do(e, http.MethodPost, "/airports", `{"place_id":9,"name":"kix"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	airports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	rec = do(e, http.MethodPost, "/airports", `{"name":"kix"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"place_id is required"}`, rec.Body.String())
	places.AssertExpectations(t)
}

func TestPublishLayout(t *testing.T) {
	layouts := new(mockLayouts)
	h := NewLayoutHandler(layouts, logger.Nop())
	e := echo.New()
	e.POST("/boards/:id/layouts", h.Publish, middleware.JWTAuth(secret))
	auth := authHeader(t, 9, model.RoleBoard)

	want := service.LayoutInput{Rows: 3, SeatsPerRow: 2, BusinessRows: 1}
	publisher := mock.MatchedBy(func(p *uint64) bool { return p != nil && *p == 9 })

	t.Run("numbers and numeric strings", func(t *testing.T) {
		layouts.On("Publish", mock.Anything, uint64(4), want, publisher).
			Return(&model.BoardLayout{BoardID: 4, SeatsVersion: 2, Rows: 3, SeatsPerRow: 2, BusinessRows: 1}, nil).Once()
		rec := do(e, http.MethodPost, "/boards/4/layouts", `{"rows":"3","seats_per_row":2,"business_rows":1}`, auth)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"seats":6`)
		assert.Contains(t, rec.Body.String(), `"seats_version":2`)
	})

	t.Run("form body", func(t *testing.T) {
		layouts.On("Publish", mock.Anything, uint64(4), want, publisher).
			Return(&model.BoardLayout{BoardID: 4, SeatsVersion: 3}, nil).Once()
		form := url.Values{"rows": {"3"}, "seats_per_row": {"2"}, "business_rows": {"1"}}
		req := httptest.NewRequest(http.MethodPost, "/boards/4/layouts", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.Header.Set(echo.HeaderAuthorization, auth)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	for _, body := range []string{
		`{"rows":3.5,"seats_per_row":2}`,
		`{"rows":"abc","seats_per_row":2}`,
		`{"rows":null,"seats_per_row":2}`,
		`{"seats_per_row":2}`,
		`{"rows":0,"seats_per_row":2}`,
		`not json`,
	} {
		t.Run("rejects "+body, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/boards/4/layouts", body, auth)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("unknown board", func(t *testing.T) {
		layouts.On("Publish", mock.Anything, uint64(5), want, publisher).Return(nil, repository.ErrBoardNotFound).Once()
		rec := do(e, http.MethodPost, "/boards/5/layouts", `{"rows":3,"seats_per_row":2,"business_rows":1}`, auth)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	layouts.AssertExpectations(t)
}

func TestCurrentLayoutWithoutSeats(t *testing.T) {
	layouts := new(mockLayouts)
	h := NewLayoutHandler(layouts, logger.Nop())
	e := echo.New()
	e.GET("/boards/:id/layout", h.Current)

	layouts.On("Current", mock.Anything, uint64(4)).Return(0, nil, nil).Once()
	rec := do(e, http.MethodGet, "/boards/4/layout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"board_id":4,"version":0,"seats":[]}`, rec.Body.String())
}
