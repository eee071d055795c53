package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/osaka-airlines/internal/config"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/service"
	"github.com/iliyamo/osaka-airlines/internal/utils"
)

var authNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func authServer(accounts *mockAccounts, tokens *mockTokens) *echo.Echo {
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 7}
	h := NewAuthHandler(cfg, accounts, tokens, logger.Nop())
	h.now = func() time.Time { return authNow }
	e := echo.New()
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/refresh", h.Refresh)
	e.POST("/auth/logout", h.Logout, middleware.OptionalJWT(secret))
	e.GET("/me", h.Me, middleware.JWTAuth(secret))
	return e
}

func TestRegisterCreatesClient(t *testing.T) {
	accounts, tokens := new(mockAccounts), new(mockTokens)
	e := authServer(accounts, tokens)

	accounts.On("Register", mock.Anything, mock.MatchedBy(func(r service.Registration) bool {
		return r.Login == "hanako" && r.Role == model.RoleClient
	})).Return(&model.User{ID: 7, Login: "hanako", Role: model.RoleClient}, nil).Once()
	tokens.On("StoreRefresh", mock.Anything, uint64(7), mock.Anything, authNow.Add(7*24*time.Hour)).Return(nil).Once()

	rec := do(e, http.MethodPost, "/auth/register",
		`{"login":"hanako","password":"Secr3t!pass","phone":"+81901234567","role":"admin"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleClient, resp.User.Role)
	assert.NotEmpty(t, resp.Refresh.Token)

	accounts.On("Register", mock.Anything, mock.Anything).Return(nil, repository.ErrLoginExists).Once()
	rec = do(e, http.MethodPost, "/auth/register", `{"login":"hanako","password":"Secr3t!pass"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	accounts.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	accounts, tokens := new(mockAccounts), new(mockTokens)
	e := authServer(accounts, tokens)

	accounts.On("Authenticate", mock.Anything, "kenji", "pw").
		Return(&model.User{ID: 3, Login: "kenji", Role: model.RoleFlight}, nil).Once()
	tokens.On("StoreRefresh", mock.Anything, uint64(3), mock.Anything, mock.Anything).Return(nil).Once()

	rec := do(e, http.MethodPost, "/auth/login", `{"login":"kenji","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, authNow.Add(15*time.Minute), resp.Access.Expires.UTC())

	accounts.On("Authenticate", mock.Anything, "kenji", "bad").Return(nil, service.ErrInvalidCredentials).Once()
	rec = do(e, http.MethodPost, "/auth/login", `{"login":"kenji","password":"bad"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	accounts.On("Authenticate", mock.Anything, "gone", "pw").Return(nil, service.ErrAccountDisabled).Once()
	rec = do(e, http.MethodPost, "/auth/login", `{"login":"gone","password":"pw"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/auth/login", `{"login":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	accounts, tokens := new(mockAccounts), new(mockTokens)
	e := authServer(accounts, tokens)
	hash := utils.HashRefreshRaw("old-token")

	tokens.On("ValidateRefresh", mock.Anything, hash, authNow).Return(uint64(3), nil).Once()
	tokens.On("RevokeByHash", mock.Anything, hash).Return(nil).Once()
	accounts.On("ActiveUser", mock.Anything, uint64(3)).Return(&model.User{ID: 3, Role: model.RoleBoard}, nil).Once()
	tokens.On("StoreRefresh", mock.Anything, uint64(3), mock.Anything, mock.Anything).Return(nil).Once()

	rec := do(e, http.MethodPost, "/auth/refresh", `{"refresh_token":"old-token"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	tokens.On("ValidateRefresh", mock.Anything, utils.HashRefreshRaw("stale"), authNow).Return(uint64(0), repository.ErrTokenInvalid).Once()
	rec = do(e, http.MethodPost, "/auth/refresh", `{"refresh_token":"stale"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/auth/refresh", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	tokens.AssertExpectations(t)
	accounts.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	accounts, tokens := new(mockAccounts), new(mockTokens)
	e := authServer(accounts, tokens)

	tokens.On("RevokeAllForUser", mock.Anything, uint64(7)).Return(nil).Once()
	rec := do(e, http.MethodPost, "/auth/logout", "", authHeader(t, 7, model.RoleClient))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	hash := utils.HashRefreshRaw("tok")
	tokens.On("ValidateRefresh", mock.Anything, hash, authNow).Return(uint64(7), nil).Once()
	tokens.On("RevokeByHash", mock.Anything, hash).Return(nil).Once()
	rec = do(e, http.MethodPost, "/auth/logout", `{"refresh_token":"tok"}`, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodPost, "/auth/logout", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	tokens.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	accounts, tokens := new(mockAccounts), new(mockTokens)
	e := authServer(accounts, tokens)

	accounts.On("ActiveUser", mock.Anything, uint64(7)).Return(&model.User{ID: 7, Login: "hanako", Role: model.RoleClient}, nil).Once()
	rec := do(e, http.MethodGet, "/me", "", authHeader(t, 7, model.RoleClient))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"login":"hanako"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestStaffAccounts(t *testing.T) {
	accounts := new(mockAccounts)
	h := NewStaffHandler(accounts, logger.Nop())
	e := echo.New()
	e.POST("/users", h.Create)
	e.PATCH("/users/:id/role", h.AssignRole)

	accounts.On("Register", mock.Anything, mock.MatchedBy(func(r service.Registration) bool {
		return r.Login == "yuki" && r.Role == model.RoleRevenue
	})).Return(&model.User{ID: 12, Login: "yuki", Role: model.RoleRevenue}, nil).Once()
	rec := do(e, http.MethodPost, "/users", `{"login":"yuki","password":"Secr3t!pass","role":"revenue"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	accounts.On("Register", mock.Anything, mock.MatchedBy(func(r service.Registration) bool {
		return r.Role == model.RoleUnassigned
	})).Return(&model.User{ID: 13, Role: model.RoleUnassigned}, nil).Once()
	rec = do(e, http.MethodPost, "/users", `{"login":"sora","password":"Secr3t!pass"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/users", `{"login":"x","password":"y","role":"client"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	accounts.On("AssignRole", mock.Anything, uint64(12), model.RoleFired).Return(nil).Once()
	rec = do(e, http.MethodPatch, "/users/12/role", `{"role":"FIRED"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":12,"role":"fired"}`, rec.Body.String())

	accounts.On("AssignRole", mock.Anything, uint64(99), model.RoleBoard).Return(repository.ErrUserNotFound).Once()
	rec = do(e, http.MethodPatch, "/users/99/role", `{"role":"board"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	accounts.AssertExpectations(t)
}
