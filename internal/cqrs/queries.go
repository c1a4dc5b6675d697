package cqrs

import "github.com/krbank/backoffice/internal/models"

// ---------- Employee queries ----------

type GetEmployeeQuery struct {
	EmployeeID string
}

type GetEmployeeByUsernameQuery struct {
	Username string
}

// ListEmployeesQuery lists all employees, or only those with Role when set.
type ListEmployeesQuery struct {
	Role models.Role
}

type CountEmployeesQuery struct {
	Role models.Role
}

// ---------- Customer queries ----------

type GetCustomerQuery struct {
	CustomerID string
}

// ListCustomersQuery lists all customers, or only those created by EmployeeID.
type ListCustomersQuery struct {
	EmployeeID string
}

type SearchCustomersQuery struct {
	Term string
}

// CountCustomersQuery counts all customers, or those created by EmployeeID.
type CountCustomersQuery struct {
	EmployeeID string
}

// ---------- Account queries ----------

type GetAccountQuery struct {
	AccountID string
}

type GetAccountByNumberQuery struct {
	AccountNumber string
}

// ListAccountsQuery applies at most one filter, checked in field order.
// With no filter set every account is returned.
type ListAccountsQuery struct {
	CustomerID  string
	EmployeeID  string
	AccountType models.AccountType
	Status      models.AccountStatus
}

// CountAccountsQuery counts all accounts, or those of CustomerID or opened by
// EmployeeID. CustomerID wins when both are set.
type CountAccountsQuery struct {
	CustomerID string
	EmployeeID string
}
