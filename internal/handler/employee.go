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

// EmployeeHandler serves staff administration within a company.
type EmployeeHandler struct {
	Cfg       config.Config
	Employees *repository.EmployeeRepo
}

func NewEmployeeHandler(cfg config.Config, employees *repository.EmployeeRepo) *EmployeeHandler {
	if employees == nil {
		panic("nil repository passed to NewEmployeeHandler")
	}
	return &EmployeeHandler{Cfg: cfg, Employees: employees}
}

// employeeView is the response shape; the password hash never leaves
// the server.
type employeeView struct {
	ID        uint64 `json:"id"`
	CompanyID uint64 `json:"company_id"`
	CPF       string `json:"cpf"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

func viewEmployee(e *model.Employee) employeeView {
	return employeeView{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		CPF:       e.CPF,
		Name:      e.Name,
		Role:      e.Role,
		IsActive:  e.IsActive,
	}
}

var companyRoles = map[string]bool{
	model.RoleAdmin:   true,
	model.RoleManager: true,
	model.RoleCashier: true,
}

type createEmployeeReq struct {
	CPF      string `json:"cpf"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Create registers an employee in the caller's company.  SYSADMIN
// cannot be granted here; that role exists only for the cross-tenant
// administration surface.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req createEmployeeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	cpf, okCPF := cleanCPF(req.CPF)
	req.Name = strings.TrimSpace(req.Name)
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !okCPF || req.Name == "" || len(req.Password) < 6 {
		return fail(c, http.StatusBadRequest, "cpf, name and password (min 6 chars) required")
	}
	if !companyRoles[role] {
		return fail(c, http.StatusBadRequest, "role must be ADMIN, MANAGER or CASHIER")
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e := &model.Employee{
		CompanyID:    companyID(c),
		CPF:          cpf,
		Name:         req.Name,
		Role:         role,
		PasswordHash: hash,
	}
	if err := h.Employees.Create(ctx, e); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"employee": viewEmployee(e)})
}

func (h *EmployeeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	employees, err := h.Employees.ListByCompany(ctx, companyID(c))
	if err != nil {
		return respondError(c, err)
	}
	views := make([]employeeView, 0, len(employees))
	for i := range employees {
		views = append(views, viewEmployee(&employees[i]))
	}
	return ok(c, http.StatusOK, echo.Map{"employees": views})
}

func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Employees.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"employee": viewEmployee(e)})
}

type updateEmployeeReq struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req updateEmployeeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Employees.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		e.Name = name
	}
	if role := strings.ToUpper(strings.TrimSpace(req.Role)); role != "" {
		if !companyRoles[role] {
			return fail(c, http.StatusBadRequest, "role must be ADMIN, MANAGER or CASHIER")
		}
		e.Role = role
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	if err := h.Employees.Update(ctx, e.CompanyID, e.ID, e.Name, e.Role, e.IsActive); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"employee": viewEmployee(e)})
}
