package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/config"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/middleware"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/service"
	"github.com/iliyamo/osaka-airlines/internal/utils"
)

// AuthHandler issues and revokes access/refresh token pairs.
type AuthHandler struct {
	cfg      config.Config
	accounts AccountService
	tokens   TokenStore
	log      logger.Logger
	now      func() time.Time
}

func NewAuthHandler(cfg config.Config, accounts AccountService, tokens TokenStore, log logger.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, accounts: accounts, tokens: tokens, log: log, now: time.Now}
}

type registerReq struct {
	Login      string `json:"login"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// issue signs an access token and stores a fresh refresh token for u.
func (h *AuthHandler) issue(c echo.Context, u *model.User) (*authResp, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	now := h.now()
	access, err := utils.NewAccessToken(h.cfg.JWTSecret, u.ID, u.Role, h.cfg.AccessTTLMin, now)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.cfg.RefreshTTLDays, now)
	if err != nil {
		return nil, err
	}
	if err := h.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Register signs up a client and logs them in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.accounts.Register(ctx, service.Registration{
		Login:      req.Login,
		Password:   req.Password,
		Phone:      req.Phone,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Role:       model.RoleClient,
	})
	if err != nil {
		return writeError(c, h.log, "register", err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return writeError(c, h.log, "issue tokens", err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		return badRequest(c, "login and password are required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.accounts.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		return writeError(c, h.log, "login", err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return writeError(c, h.log, "issue tokens", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.tokens.ValidateRefresh(ctx, hash, h.now())
	if err != nil {
		return writeError(c, h.log, "refresh", err)
	}
	if err := h.tokens.RevokeByHash(ctx, hash); err != nil {
		return writeError(c, h.log, "refresh", err)
	}
	u, err := h.accounts.ActiveUser(ctx, userID)
	if err != nil {
		return writeError(c, h.log, "refresh", err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return writeError(c, h.log, "issue tokens", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or every refresh token of
// the caller when only a bearer token is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.tokens.ValidateRefresh(ctx, hash, h.now()); err != nil {
			return writeError(c, h.log, "logout", err)
		}
		if err := h.tokens.RevokeByHash(ctx, hash); err != nil {
			return writeError(c, h.log, "logout", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	if uid, ok := middleware.UserID(c); ok {
		if err := h.tokens.RevokeAllForUser(ctx, uid); err != nil {
			return writeError(c, h.log, "logout", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return badRequest(c, "provide Authorization header or refresh_token")
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.accounts.ActiveUser(ctx, uid)
	if err != nil {
		return writeError(c, h.log, "load user", err)
	}
	return c.JSON(http.StatusOK, u)
}
