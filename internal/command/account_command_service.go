package command

import (
	"context"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/events"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// Column limits of the stored amounts.
var (
	maxBalance      = decimal.RequireFromString("9999999999999.99")
	maxInterestRate = decimal.RequireFromString("999.99")
)

// AccountCommandService owns the account ledger writes: numbering, default
// derivation by account type, balance and status mutation and the zero-balance
// rule on delete.
type AccountCommandService struct {
	store repository.Store
	deps
}

func NewAccountCommandService(store repository.Store, opts ...Option) *AccountCommandService {
	return &AccountCommandService{store: store, deps: newDeps(opts)}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.AccountView, error) {
	if !cmd.AccountType.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown account type")
	}

	balance := decimal.Zero
	if cmd.InitialBalance != nil {
		balance = *cmd.InitialBalance
	}
	if err := checkAmount("initial balance", balance, maxBalance); err != nil {
		return nil, err
	}

	rate := cmd.AccountType.DefaultInterestRate()
	if cmd.InterestRate != nil && !(cmd.InterestRate.IsZero() && s.legacyZeroRateDefault) {
		rate = *cmd.InterestRate
	}
	if err := checkAmount("interest rate", rate, maxInterestRate); err != nil {
		return nil, err
	}

	var creditLimit decimal.NullDecimal
	switch {
	case cmd.CreditLimit != nil:
		if err := checkAmount("credit limit", *cmd.CreditLimit, maxBalance); err != nil {
			return nil, err
		}
		creditLimit = decimal.NewNullDecimal(*cmd.CreditLimit)
	case cmd.AccountType == models.AccountTypeCreditCard:
		creditLimit = decimal.NewNullDecimal(models.DefaultCreditLimit)
	}

	now := s.now()
	employeeID := cmd.EmployeeID
	account := &models.Account{
		ID:                  utils.GenerateID(utils.AccountIDPrefix),
		AccountNumber:       utils.GenerateAccountNumber(cmd.AccountType, now),
		AccountType:         cmd.AccountType,
		Balance:             balance,
		InterestRate:        rate,
		CreditLimit:         creditLimit,
		Status:              models.AccountStatusActive,
		CustomerID:          cmd.CustomerID,
		CreatedByEmployeeID: &employeeID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var view models.AccountView
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		customer, err := tx.Customers().GetForShare(ctx, cmd.CustomerID)
		if err != nil {
			return dErrors.FromStore(err, "customer not found")
		}
		employee, err := tx.Employees().GetForShare(ctx, cmd.EmployeeID)
		if err != nil {
			return dErrors.FromStore(err, "employee not found")
		}
		// The account-number constraint is the final authority; a collision is
		// reported, not retried.
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return dErrors.FromStore(err, "account number already exists")
		}
		view = models.NewAccountView(*account, customer.FullName(), employee.FullName())
		return nil
	})
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to create account")
	}

	s.logger.InfoContext(ctx, "account created",
		"account_id", account.ID, "account_number", account.AccountNumber, "account_type", account.AccountType)
	s.publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		CustomerID:    account.CustomerID,
		AccountType:   string(account.AccountType),
		Balance:       account.Balance.StringFixed(2),
	})
	return &view, nil
}

// UpdateAccountStatus relabels the account. Every transition is allowed,
// including reopening a CLOSED account.
func (s *AccountCommandService) UpdateAccountStatus(ctx context.Context, cmd cqrs.UpdateAccountStatusCommand) (*models.AccountView, error) {
	if !cmd.Status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown account status")
	}

	var previous models.AccountStatus
	view, err := s.mutate(ctx, cmd.AccountID, func(a *models.Account) {
		previous = a.Status
		a.Status = cmd.Status
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.AccountEventsStream, events.AccountStatusChanged, events.AccountStatusChangedEvent{
		AccountID: view.ID,
		From:      string(previous),
		To:        string(view.Status),
	})
	return view, nil
}

// UpdateAccountBalance overwrites the balance.
func (s *AccountCommandService) UpdateAccountBalance(ctx context.Context, cmd cqrs.UpdateAccountBalanceCommand) (*models.AccountView, error) {
	if err := checkAmount("balance", cmd.NewBalance, maxBalance); err != nil {
		return nil, err
	}

	var previous decimal.Decimal
	view, err := s.mutate(ctx, cmd.AccountID, func(a *models.Account) {
		previous = a.Balance
		a.Balance = cmd.NewBalance
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.AccountEventsStream, events.AccountBalanceSet, events.AccountBalanceSetEvent{
		AccountID:  view.ID,
		OldBalance: previous.StringFixed(2),
		NewBalance: view.Balance.StringFixed(2),
	})
	return view, nil
}

// DeleteAccount removes an account whose balance is exactly zero.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	var deleted *models.Account
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		account, err := tx.Accounts().GetForUpdate(ctx, cmd.AccountID)
		if err != nil {
			return dErrors.FromStore(err, "account not found")
		}
		if !account.Balance.IsZero() {
			s.metrics.IncrementGuardRejection("account")
			return dErrors.New(dErrors.CodeDependency, "account balance must be zero before deletion")
		}
		deleted = account
		return tx.Accounts().Delete(ctx, cmd.AccountID)
	})
	if err != nil {
		return dErrors.FromStore(err, "failed to delete account")
	}

	s.cache.InvalidateAccount(ctx, deleted.ID)
	s.logger.InfoContext(ctx, "account deleted", "account_id", deleted.ID, "account_number", deleted.AccountNumber)
	s.publish(ctx, events.AccountEventsStream, events.AccountDeleted, events.AccountDeletedEvent{
		AccountID:     deleted.ID,
		AccountNumber: deleted.AccountNumber,
		CustomerID:    deleted.CustomerID,
	})
	return nil
}

// mutate applies change to a locked account inside one transaction and
// returns the resulting view.
func (s *AccountCommandService) mutate(ctx context.Context, accountID string, change func(*models.Account)) (*models.AccountView, error) {
	var view models.AccountView
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		account, err := tx.Accounts().GetForUpdate(ctx, accountID)
		if err != nil {
			return dErrors.FromStore(err, "account not found")
		}
		change(account)
		account.UpdatedAt = s.now()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}

		var customerName, createdBy string
		if customer, err := tx.Customers().GetByID(ctx, account.CustomerID); err == nil {
			customerName = customer.FullName()
		}
		if account.CreatedByEmployeeID != nil {
			if employee, err := tx.Employees().GetByID(ctx, *account.CreatedByEmployeeID); err == nil {
				createdBy = employee.FullName()
			}
		}
		view = models.NewAccountView(*account, customerName, createdBy)
		return nil
	})
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to update account")
	}

	s.cache.InvalidateAccount(ctx, accountID)
	return &view, nil
}

// checkAmount rejects negative values, values finer than cents and values
// beyond the column limit.
func checkAmount(field string, v, limit decimal.Decimal) error {
	if v.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, field+" must not be negative")
	}
	if !v.Equal(v.Round(2)) {
		return dErrors.New(dErrors.CodeValidation, field+" must have at most 2 decimal places")
	}
	if v.GreaterThan(limit) {
		return dErrors.New(dErrors.CodeValidation, field+" exceeds "+limit.String())
	}
	return nil
}
