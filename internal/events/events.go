package events

import "time"

// Event types
const (
	EmployeeCreated = "employee.created"
	EmployeeUpdated = "employee.updated"
	EmployeeDeleted = "employee.deleted"

	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"

	AccountCreated       = "account.created"
	AccountStatusChanged = "account.status_changed"
	AccountBalanceSet    = "account.balance_set"
	AccountDeleted       = "account.deleted"
)

// Stream names
const (
	EmployeeEventsStream = "employee.events"
	CustomerEventsStream = "customer.events"
	AccountEventsStream  = "account.events"
)

// Streams lists every stream the service publishes to.
func Streams() []string {
	return []string{EmployeeEventsStream, CustomerEventsStream, AccountEventsStream}
}

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Employee events
type EmployeeCreatedEvent struct {
	EmployeeID string `json:"employeeId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}

type EmployeeUpdatedEvent struct {
	EmployeeID string `json:"employeeId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}

type EmployeeDeletedEvent struct {
	EmployeeID string `json:"employeeId"`
}

// Customer events
type CustomerCreatedEvent struct {
	CustomerID string `json:"customerId"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
}

type CustomerUpdatedEvent struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
}

type CustomerDeletedEvent struct {
	CustomerID string `json:"customerId"`
}

// Account events. Amounts travel as decimal strings.
type AccountCreatedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    string `json:"customerId"`
	AccountType   string `json:"accountType"`
	Balance       string `json:"balance"`
}

type AccountStatusChangedEvent struct {
	AccountID string `json:"accountId"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type AccountBalanceSetEvent struct {
	AccountID  string `json:"accountId"`
	OldBalance string `json:"oldBalance"`
	NewBalance string `json:"newBalance"`
}

type AccountDeletedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    string `json:"customerId"`
}
