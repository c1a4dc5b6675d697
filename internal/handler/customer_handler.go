package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
)

const dateLayout = "2006-01-02"

type CustomerCommander interface {
	CreateCustomer(context.Context, cqrs.CreateCustomerCommand) (*models.CustomerView, error)
	UpdateCustomer(context.Context, cqrs.UpdateCustomerCommand) (*models.CustomerView, error)
	DeleteCustomer(context.Context, cqrs.DeleteCustomerCommand) error
}

type CustomerQuerier interface {
	GetCustomer(context.Context, cqrs.GetCustomerQuery) (*models.CustomerView, error)
	ListCustomers(context.Context, cqrs.ListCustomersQuery) ([]models.CustomerView, error)
	ListCustomersWithAccounts(context.Context) ([]models.CustomerView, error)
	SearchCustomers(context.Context, cqrs.SearchCustomersQuery) ([]models.CustomerView, error)
	CountCustomers(context.Context, cqrs.CountCustomersQuery) (int64, error)
}

type CustomerHandler struct {
	commands CustomerCommander
	queries  CustomerQuerier
}

// CustomerRequest is shared by create and update; both replace every field.
type CustomerRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,bankphone"`
	Address     string `json:"address" validate:"max=255"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	SSN         string `json:"ssn" validate:"required,bankssn"`
}

func (r CustomerRequest) data() cqrs.CustomerData {
	d := cqrs.CustomerData{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		SSN:         r.SSN,
	}
	// already checked by the datetime tag
	if dob, err := time.Parse(dateLayout, r.DateOfBirth); err == nil {
		d.DateOfBirth = &dob
	}
	return d
}

type ListCustomersResponse struct {
	Customers []models.CustomerView `json:"customers"`
}

func NewCustomerHandler(commands CustomerCommander, queries CustomerQuerier) *CustomerHandler {
	return &CustomerHandler{commands: commands, queries: queries}
}

// CreateCustomer records the authenticated employee as the creator.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	employeeID, _ := middleware.GetEmployeeID(c)

	req, ok := bindCustomer(c)
	if !ok {
		return
	}

	customer, err := h.commands.CreateCustomer(c.Request.Context(), cqrs.CreateCustomerCommand{
		CustomerData: req.data(),
		EmployeeID:   employeeID,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// ListCustomers accepts an optional ?employeeId= filter.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	views, err := h.queries.ListCustomers(c.Request.Context(), cqrs.ListCustomersQuery{
		EmployeeID: c.Query("employeeId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, ListCustomersResponse{Customers: views})
}

func (h *CustomerHandler) ListCustomersWithAccounts(c *gin.Context) {
	views, err := h.queries.ListCustomersWithAccounts(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, ListCustomersResponse{Customers: views})
}

// SearchCustomers reads the term from ?q=.
func (h *CustomerHandler) SearchCustomers(c *gin.Context) {
	views, err := h.queries.SearchCustomers(c.Request.Context(), cqrs.SearchCustomersQuery{Term: c.Query("q")})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to search customers")
		return
	}
	c.JSON(http.StatusOK, ListCustomersResponse{Customers: views})
}

func (h *CustomerHandler) CountCustomers(c *gin.Context) {
	n, err := h.queries.CountCustomers(c.Request.Context(), cqrs.CountCustomersQuery{
		EmployeeID: c.Query("employeeId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to count customers")
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	view, err := h.queries.GetCustomer(c.Request.Context(), cqrs.GetCustomerQuery{CustomerID: c.Param("id")})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to fetch customer")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	req, ok := bindCustomer(c)
	if !ok {
		return
	}

	view, err := h.commands.UpdateCustomer(c.Request.Context(), cqrs.UpdateCustomerCommand{
		CustomerData: req.data(),
		CustomerID:   c.Param("id"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.commands.DeleteCustomer(c.Request.Context(), cqrs.DeleteCustomerCommand{CustomerID: c.Param("id")}); err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindCustomer(c *gin.Context) (CustomerRequest, bool) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return req, false
	}
	return req, true
}
