package models

import "github.com/shopspring/decimal"

// EmployeeView is the API projection of an employee. It never exposes the
// password digest; CustomerCount is derived on every read.
type EmployeeView struct {
	Employee
	CustomerCount int64 `json:"customerCount"`
}

// CustomerView adds the derived account count and the creating employee's
// name. Accounts is only populated by the with-accounts listing.
type CustomerView struct {
	Customer
	CreatedByEmployeeName string        `json:"createdByEmployeeName,omitempty"`
	AccountCount          int64         `json:"accountCount"`
	Accounts              []AccountView `json:"accounts,omitempty"`
}

type AccountView struct {
	Account
	AccountTypeDisplayName string `json:"accountTypeDisplayName"`
	CustomerName           string `json:"customerName,omitempty"`
	CreatedByEmployeeName  string `json:"createdByEmployeeName,omitempty"`
}

// DashboardSummary backs the back-office landing page.
type DashboardSummary struct {
	CustomerCount      int64           `json:"customerCount"`
	EmployeeCount      int64           `json:"employeeCount"`
	AdminCount         int64           `json:"adminCount"`
	AccountCount       int64           `json:"accountCount"`
	TotalActiveBalance decimal.Decimal `json:"totalActiveBalance"`
}

func NewEmployeeView(e Employee, customerCount int64) EmployeeView {
	return EmployeeView{Employee: e, CustomerCount: customerCount}
}

func NewCustomerView(c Customer, createdByName string, accountCount int64) CustomerView {
	return CustomerView{Customer: c, CreatedByEmployeeName: createdByName, AccountCount: accountCount}
}

func NewAccountView(a Account, customerName, createdByName string) AccountView {
	return AccountView{
		Account:                a,
		AccountTypeDisplayName: a.AccountType.DisplayName(),
		CustomerName:           customerName,
		CreatedByEmployeeName:  createdByName,
	}
}
