package models

import "github.com/shopspring/decimal"

type AccountType string

const (
	AccountTypeSavings          AccountType = "SAVINGS"
	AccountTypeChecking         AccountType = "CHECKING"
	AccountTypeFixedDeposit     AccountType = "FIXED_DEPOSIT"
	AccountTypeCreditCard       AccountType = "CREDIT_CARD"
	AccountTypeMoneyMarket      AccountType = "MONEY_MARKET"
	AccountTypeBusinessChecking AccountType = "BUSINESS_CHECKING"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusInactive  AccountStatus = "INACTIVE"
	AccountStatusClosed    AccountStatus = "CLOSED"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// DefaultCreditLimit applies to CREDIT_CARD accounts opened without a limit.
var DefaultCreditLimit = decimal.RequireFromString("5000.00")

type accountTypeInfo struct {
	prefix      string
	displayName string
	defaultRate decimal.Decimal
}

var accountTypes = map[AccountType]accountTypeInfo{
	AccountTypeSavings:          {"SAV", "Savings Account", decimal.RequireFromString("2.50")},
	AccountTypeChecking:         {"CHK", "Checking Account", decimal.RequireFromString("0.10")},
	AccountTypeFixedDeposit:     {"FD", "Fixed Deposit Account", decimal.RequireFromString("4.50")},
	AccountTypeCreditCard:       {"CC", "Credit Card Account", decimal.RequireFromString("18.90")},
	AccountTypeMoneyMarket:      {"MM", "Money Market Account", decimal.RequireFromString("3.20")},
	AccountTypeBusinessChecking: {"BC", "Business Checking Account", decimal.RequireFromString("0.50")},
}

// AccountTypes lists every account type in declaration order.
func AccountTypes() []AccountType {
	return []AccountType{
		AccountTypeSavings,
		AccountTypeChecking,
		AccountTypeFixedDeposit,
		AccountTypeCreditCard,
		AccountTypeMoneyMarket,
		AccountTypeBusinessChecking,
	}
}

func (t AccountType) Valid() bool {
	_, ok := accountTypes[t]
	return ok
}

// NumberPrefix is the fixed account-number prefix for the type.
func (t AccountType) NumberPrefix() string {
	return accountTypes[t].prefix
}

func (t AccountType) DisplayName() string {
	return accountTypes[t].displayName
}

// DefaultInterestRate is the annual rate, in percent, applied when an account
// is opened without an explicit rate.
func (t AccountType) DefaultInterestRate() decimal.Decimal {
	return accountTypes[t].defaultRate
}

func AccountStatuses() []AccountStatus {
	return []AccountStatus{
		AccountStatusActive,
		AccountStatusInactive,
		AccountStatusClosed,
		AccountStatusSuspended,
	}
}

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed, AccountStatusSuspended:
		return true
	}
	return false
}
