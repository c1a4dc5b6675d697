package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
)

// EmployeeCommander defines the write-side operations used by EmployeeHandler.
type EmployeeCommander interface {
	CreateEmployee(context.Context, cqrs.CreateEmployeeCommand) (*models.EmployeeView, error)
	UpdateEmployee(context.Context, cqrs.UpdateEmployeeCommand) (*models.EmployeeView, error)
	DeleteEmployee(context.Context, cqrs.DeleteEmployeeCommand) error
}

// EmployeeQuerier defines the read-side operations used by EmployeeHandler.
type EmployeeQuerier interface {
	GetEmployee(context.Context, cqrs.GetEmployeeQuery) (*models.EmployeeView, error)
	GetEmployeeByUsername(context.Context, cqrs.GetEmployeeByUsernameQuery) (*models.EmployeeView, error)
	ListEmployees(context.Context, cqrs.ListEmployeesQuery) ([]models.EmployeeView, error)
	CountEmployees(context.Context, cqrs.CountEmployeesQuery) (int64, error)
}

// EmployeeHandler serves the identity registry. Routes are mounted behind
// RequireRole(ADMIN).
type EmployeeHandler struct {
	commands EmployeeCommander
	queries  EmployeeQuerier
}

type CreateEmployeeRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=ADMIN EMPLOYEE"`
}

type UpdateEmployeeRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=ADMIN EMPLOYEE"`
}

type ListEmployeesResponse struct {
	Employees []models.EmployeeView `json:"employees"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func NewEmployeeHandler(commands EmployeeCommander, queries EmployeeQuerier) *EmployeeHandler {
	return &EmployeeHandler{commands: commands, queries: queries}
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	employee, err := h.commands.CreateEmployee(c.Request.Context(), cqrs.CreateEmployeeCommand{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// ListEmployees accepts an optional ?role= filter.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	views, err := h.queries.ListEmployees(c.Request.Context(), cqrs.ListEmployeesQuery{
		Role: models.Role(c.Query("role")),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, ListEmployeesResponse{Employees: views})
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	view, err := h.queries.GetEmployee(c.Request.Context(), cqrs.GetEmployeeQuery{EmployeeID: c.Param("id")})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to fetch employee")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *EmployeeHandler) GetEmployeeByUsername(c *gin.Context) {
	view, err := h.queries.GetEmployeeByUsername(c.Request.Context(), cqrs.GetEmployeeByUsernameQuery{
		Username: c.Param("username"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to fetch employee")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *EmployeeHandler) CountEmployees(c *gin.Context) {
	n, err := h.queries.CountEmployees(c.Request.Context(), cqrs.CountEmployeesQuery{
		Role: models.Role(c.Query("role")),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to count employees")
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateEmployee(c.Request.Context(), cqrs.UpdateEmployeeCommand{
		EmployeeID: c.Param("id"),
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Role:       models.Role(req.Role),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.commands.DeleteEmployee(c.Request.Context(), cqrs.DeleteEmployeeCommand{EmployeeID: c.Param("id")}); err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to delete employee")
		return
	}
	c.Status(http.StatusNoContent)
}
