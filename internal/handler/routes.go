package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth      *AuthHandler
	Employees *EmployeeHandler
	Customers *CustomerHandler
	Accounts  *AccountHandler
	Stats     *StatsHandler
}

// RegisterRoutes mounts the /v1 API. authenticate guards everything except
// login and refresh; employee management additionally requires ADMIN.
func RegisterRoutes(r gin.IRouter, h Handlers, authenticate gin.HandlerFunc) {
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authenticate, h.Auth.Logout)
	}

	employees := r.Group("/v1/employees", authenticate, middleware.RequireRole(models.RoleAdmin))
	{
		employees.POST("", h.Employees.CreateEmployee)
		employees.GET("", h.Employees.ListEmployees)
		employees.GET("/count", h.Employees.CountEmployees)
		employees.GET("/username/:username", h.Employees.GetEmployeeByUsername)
		employees.GET("/:id", h.Employees.GetEmployee)
		employees.PUT("/:id", h.Employees.UpdateEmployee)
		employees.DELETE("/:id", h.Employees.DeleteEmployee)
	}

	customers := r.Group("/v1/customers", authenticate)
	{
		customers.POST("", h.Customers.CreateCustomer)
		customers.GET("", h.Customers.ListCustomers)
		customers.GET("/with-accounts", h.Customers.ListCustomersWithAccounts)
		customers.GET("/search", h.Customers.SearchCustomers)
		customers.GET("/count", h.Customers.CountCustomers)
		customers.GET("/:id", h.Customers.GetCustomer)
		customers.PUT("/:id", h.Customers.UpdateCustomer)
		customers.DELETE("/:id", h.Customers.DeleteCustomer)
	}

	accounts := r.Group("/v1/accounts", authenticate)
	{
		accounts.POST("", h.Accounts.CreateAccount)
		accounts.GET("", h.Accounts.ListAccounts)
		accounts.GET("/number/:accountNumber", h.Accounts.GetAccountByNumber)
		accounts.GET("/:id", h.Accounts.GetAccount)
		accounts.PUT("/:id/status", h.Accounts.UpdateAccountStatus)
		accounts.PUT("/:id/balance", h.Accounts.UpdateAccountBalance)
		accounts.DELETE("/:id", h.Accounts.DeleteAccount)
	}

	stats := r.Group("/v1/stats", authenticate)
	{
		stats.GET("/summary", h.Stats.Summary)
		stats.GET("/accounts/count", h.Stats.CountAccounts)
		stats.GET("/accounts/total-balance", h.Stats.TotalActiveBalance)
		stats.GET("/accounts/by-type", h.Stats.CountByType)
		stats.GET("/accounts/by-status", h.Stats.CountByStatus)
	}
}
