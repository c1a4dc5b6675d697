package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.AccountView, error)
	UpdateAccountStatus(context.Context, cqrs.UpdateAccountStatusCommand) (*models.AccountView, error)
	UpdateAccountBalance(context.Context, cqrs.UpdateAccountBalanceCommand) (*models.AccountView, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	GetAccountByNumber(context.Context, cqrs.GetAccountByNumberQuery) (*models.AccountView, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

// CreateAccountRequest leaves amounts optional: a missing balance opens at
// zero, a missing rate takes the type default.
type CreateAccountRequest struct {
	CustomerID     string           `json:"customerId" validate:"required"`
	AccountType    string           `json:"accountType" validate:"required,oneof=SAVINGS CHECKING FIXED_DEPOSIT CREDIT_CARD MONEY_MARKET BUSINESS_CHECKING"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
	InterestRate   *decimal.Decimal `json:"interestRate"`
	CreditLimit    *decimal.Decimal `json:"creditLimit"`
}

type UpdateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE CLOSED SUSPENDED"`
}

type UpdateAccountBalanceRequest struct {
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

type ListAccountsResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	employeeID, _ := middleware.GetEmployeeID(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		CustomerID:     req.CustomerID,
		EmployeeID:     employeeID,
		AccountType:    models.AccountType(req.AccountType),
		InitialBalance: req.InitialBalance,
		InterestRate:   req.InterestRate,
		CreditLimit:    req.CreditLimit,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, account)
}

// ListAccounts filters on the first of customerId, employeeId, type or status
// present in the query string.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{
		CustomerID:  c.Query("customerId"),
		EmployeeID:  c.Query("employeeId"),
		AccountType: models.AccountType(c.Query("type")),
		Status:      models.AccountStatus(c.Query("status")),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: c.Param("id")})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to fetch account")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetAccountByNumber(c *gin.Context) {
	number := c.Param("accountNumber")
	if !utils.ValidateAccountNumber(number) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number")
		return
	}
	view, err := h.queries.GetAccountByNumber(c.Request.Context(), cqrs.GetAccountByNumberQuery{
		AccountNumber: number,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to fetch account")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) UpdateAccountStatus(c *gin.Context) {
	var req UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateAccountStatus(c.Request.Context(), cqrs.UpdateAccountStatusCommand{
		AccountID: c.Param("id"),
		Status:    models.AccountStatus(req.Status),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to update account status")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) UpdateAccountBalance(c *gin.Context) {
	var req UpdateAccountBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateAccountBalance(c.Request.Context(), cqrs.UpdateAccountBalanceCommand{
		AccountID:  c.Param("id"),
		NewBalance: *req.Balance,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to update account balance")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{AccountID: c.Param("id")}); err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}
