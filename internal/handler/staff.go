package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/service"
)

// StaffHandler lets administrators manage employee accounts.
type StaffHandler struct {
	accounts AccountService
	log      logger.Logger
}

func NewStaffHandler(accounts AccountService, log logger.Logger) *StaffHandler {
	return &StaffHandler{accounts: accounts, log: log}
}

type staffReq struct {
	registerReq
	Role string `json:"role"`
}

func (h *StaffHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.accounts.ListStaff(ctx)
	if err != nil {
		return writeError(c, h.log, "list staff", err)
	}
	return c.JSON(http.StatusOK, list)
}

// Create registers an employee. A missing role leaves the account
// unassigned until an administrator gives it a job.
func (h *StaffHandler) Create(c echo.Context) error {
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role := model.RoleUnassigned
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok || r == model.RoleClient {
			return badRequest(c, "unknown staff role")
		}
		role = r
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
		Role:       role,
	})
	if err != nil {
		return writeError(c, h.log, "create staff", err)
	}
	return c.JSON(http.StatusCreated, u)
}

// AssignRole handles PATCH /v1/admin/users/:id/role. Assigning "fired"
// also deactivates the account.
func (h *StaffHandler) AssignRole(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return badRequest(c, "unknown role")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.accounts.AssignRole(ctx, id, role); err != nil {
		return writeError(c, h.log, "assign role", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role})
}
