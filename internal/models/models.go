package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Persisted field patterns. Stored data depends on these exact expressions.
const (
	PhonePattern = `^[+]?[0-9]{10,15}$`
	SSNPattern   = `^\d{3}-\d{2}-\d{4}$`
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type Employee struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type Customer struct {
	ID                  string     `json:"id"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Email               string     `json:"email"`
	PhoneNumber         string     `json:"phoneNumber"`
	Address             string     `json:"address"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	SSN                 string     `json:"ssn"`
	CreatedByEmployeeID string     `json:"createdByEmployeeId"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Account is the stored account record. AccountNumber is assigned once at
// creation; updates never rewrite it. CreditLimit is only guaranteed to be set
// for CREDIT_CARD accounts.
type Account struct {
	ID                  string              `json:"id"`
	AccountNumber       string              `json:"accountNumber"`
	AccountType         AccountType         `json:"accountType"`
	Balance             decimal.Decimal     `json:"balance"`
	InterestRate        decimal.Decimal     `json:"interestRate"`
	CreditLimit         decimal.NullDecimal `json:"creditLimit"`
	Status              AccountStatus       `json:"status"`
	CustomerID          string              `json:"customerId"`
	CreatedByEmployeeID *string             `json:"createdByEmployeeId,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}
