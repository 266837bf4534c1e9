package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/config"
	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/utils"
)

// CompanyHandler is the cross-tenant administration surface, reachable
// only by SYSADMIN.  It is the one handler whose queries are not
// filtered by the caller's company.
type CompanyHandler struct {
	Cfg       config.Config
	Companies *repository.CompanyRepo
	Employees *repository.EmployeeRepo
}

func NewCompanyHandler(cfg config.Config, companies *repository.CompanyRepo, employees *repository.EmployeeRepo) *CompanyHandler {
	if companies == nil || employees == nil {
		panic("nil repository passed to NewCompanyHandler")
	}
	return &CompanyHandler{Cfg: cfg, Companies: companies, Employees: employees}
}

type createCompanyReq struct {
	Name          string `json:"name"`
	CNPJ          string `json:"cnpj"`
	AdminCPF      string `json:"admin_cpf"`
	AdminName     string `json:"admin_name"`
	AdminPassword string `json:"admin_password"`
}

// Create provisions a tenant together with its first ADMIN employee,
// so the company is usable the moment it exists.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req createCompanyReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.CNPJ = strings.TrimSpace(req.CNPJ)
	adminCPF, okCPF := cleanCPF(req.AdminCPF)
	if req.Name == "" || req.CNPJ == "" {
		return fail(c, http.StatusBadRequest, "name and cnpj required")
	}
	if !okCPF || strings.TrimSpace(req.AdminName) == "" || len(req.AdminPassword) < 6 {
		return fail(c, http.StatusBadRequest, "admin_cpf, admin_name and admin_password (min 6 chars) required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	company := &model.Company{Name: req.Name, CNPJ: req.CNPJ}
	if err := h.Companies.Create(ctx, company); err != nil {
		return respondError(c, err)
	}
	hash, err := utils.HashPassword(req.AdminPassword, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}
	admin := &model.Employee{
		CompanyID:    company.ID,
		CPF:          adminCPF,
		Name:         strings.TrimSpace(req.AdminName),
		Role:         model.RoleAdmin,
		PasswordHash: hash,
	}
	if err := h.Employees.Create(ctx, admin); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"company": company, "admin": viewEmployee(admin)})
}

func (h *CompanyHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	companies, err := h.Companies.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"companies": companies})
}

func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	company, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"company": company})
}

type companyActiveReq struct {
	IsActive bool `json:"is_active"`
}

// SetActive suspends or restores a tenant.
func (h *CompanyHandler) SetActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req companyActiveReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Companies.SetActive(ctx, id, req.IsActive); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "company updated"})
}
