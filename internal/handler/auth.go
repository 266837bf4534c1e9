package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/config"
	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/utils"
)

// AuthHandler bundles dependencies for the login endpoint.
type AuthHandler struct {
	Cfg       config.Config
	Employees *repository.EmployeeRepo
}

func NewAuthHandler(cfg config.Config, employees *repository.EmployeeRepo) *AuthHandler {
	if employees == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Employees: employees}
}

type loginReq struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CompanyID uint64    `json:"company_id"`
}

// Login verifies CPF + password and issues an access token carrying
// the employee's company and role.  Unknown CPF and wrong password are
// indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	cpf, okCPF := cleanCPF(req.CPF)
	if !okCPF || req.Password == "" {
		return fail(c, http.StatusBadRequest, "cpf and password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	emp, err := h.Employees.GetByCPFForLogin(ctx, cpf)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return respondError(c, err)
	}
	if !utils.VerifyPassword(emp.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, emp.CPF, emp.CompanyID, emp.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"auth": loginResp{
		Token:     access.Token,
		ExpiresAt: access.Exp,
		Name:      emp.Name,
		Role:      emp.Role,
		CompanyID: emp.CompanyID,
	}})
}

// Me echoes the authenticated identity back, mostly for client debugging.
func (h *AuthHandler) Me(c echo.Context) error {
	return ok(c, http.StatusOK, echo.Map{
		"cpf":        actorCPF(c),
		"company_id": companyID(c),
		"role":       roleOf(c),
	})
}
