package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

type StatsQuerier interface {
	CountAccounts(context.Context, cqrs.CountAccountsQuery) (int64, error)
	TotalActiveBalance(context.Context) (decimal.Decimal, error)
	CountByType(context.Context) (map[models.AccountType]int64, error)
	CountByStatus(context.Context) (map[models.AccountStatus]int64, error)
	Summary(context.Context) (*models.DashboardSummary, error)
}

type StatsHandler struct {
	queries StatsQuerier
}

type TotalBalanceResponse struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

func NewStatsHandler(queries StatsQuerier) *StatsHandler {
	return &StatsHandler{queries: queries}
}

func (h *StatsHandler) Summary(c *gin.Context) {
	summary, err := h.queries.Summary(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CountAccounts accepts ?customerId= or ?employeeId=; customerId wins.
func (h *StatsHandler) CountAccounts(c *gin.Context) {
	n, err := h.queries.CountAccounts(c.Request.Context(), cqrs.CountAccountsQuery{
		CustomerID: c.Query("customerId"),
		EmployeeID: c.Query("employeeId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to count accounts")
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}

func (h *StatsHandler) TotalActiveBalance(c *gin.Context) {
	total, err := h.queries.TotalActiveBalance(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to sum balances")
		return
	}
	c.JSON(http.StatusOK, TotalBalanceResponse{TotalBalance: total})
}

func (h *StatsHandler) CountByType(c *gin.Context) {
	counts, err := h.queries.CountByType(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to count accounts")
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *StatsHandler) CountByStatus(c *gin.Context) {
	counts, err := h.queries.CountByStatus(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to count accounts")
		return
	}
	c.JSON(http.StatusOK, counts)
}
