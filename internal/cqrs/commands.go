package cqrs

import (
	"time"

	"github.com/krbank/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// ---------- Employee commands ----------

type CreateEmployeeCommand struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      models.Role
}

// UpdateEmployeeCommand replaces the profile fields. The password is not
// changed through this path.
type UpdateEmployeeCommand struct {
	EmployeeID string
	Username   string
	FirstName  string
	LastName   string
	Email      string
	Role       models.Role
}

type DeleteEmployeeCommand struct {
	EmployeeID string
}

// ---------- Customer commands ----------

type CustomerData struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
	DateOfBirth *time.Time
	SSN         string
}

type CreateCustomerCommand struct {
	CustomerData
	EmployeeID string
}

type UpdateCustomerCommand struct {
	CustomerData
	CustomerID string
}

type DeleteCustomerCommand struct {
	CustomerID string
}

// ---------- Account commands ----------

// CreateAccountCommand opens an account. Nil pointers mean "not supplied":
// InitialBalance defaults to zero, InterestRate to the type default and
// CreditLimit to the default limit for CREDIT_CARD.
type CreateAccountCommand struct {
	CustomerID     string
	EmployeeID     string
	AccountType    models.AccountType
	InitialBalance *decimal.Decimal
	InterestRate   *decimal.Decimal
	CreditLimit    *decimal.Decimal
}

type UpdateAccountStatusCommand struct {
	AccountID string
	Status    models.AccountStatus
}

type UpdateAccountBalanceCommand struct {
	AccountID  string
	NewBalance decimal.Decimal
}

type DeleteAccountCommand struct {
	AccountID string
}

// ---------- Auth commands ----------

type LoginCommand struct {
	Username string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
