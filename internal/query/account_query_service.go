package query

import (
	"context"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
)

type AccountQueryService struct {
	store repository.Store
	deps
}

func NewAccountQueryService(store repository.Store, opts ...Option) *AccountQueryService {
	return &AccountQueryService{store: store, deps: newDeps(opts)}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	a, err := s.cache.Account(ctx, s.store.Accounts(), q.AccountID)
	if err != nil {
		return nil, dErrors.FromStore(err, "account not found")
	}
	return s.view(ctx, *a), nil
}

func (s *AccountQueryService) GetAccountByNumber(ctx context.Context, q cqrs.GetAccountByNumberQuery) (*models.AccountView, error) {
	a, err := s.store.Accounts().GetByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, dErrors.FromStore(err, "account not found")
	}
	return s.view(ctx, *a), nil
}

// ListAccounts returns accounts most recently created first, filtered by the
// first filter set on q.
func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	repo := s.store.Accounts()
	var (
		accounts []models.Account
		err      error
	)
	switch {
	case q.CustomerID != "":
		accounts, err = repo.ListByCustomer(ctx, q.CustomerID)
	case q.EmployeeID != "":
		accounts, err = repo.ListByEmployee(ctx, q.EmployeeID)
	case q.AccountType != "":
		if !q.AccountType.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown account type")
		}
		accounts, err = repo.ListByType(ctx, q.AccountType)
	case q.Status != "":
		if !q.Status.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown account status")
		}
		accounts, err = repo.ListByStatus(ctx, q.Status)
	default:
		accounts, err = repo.List(ctx)
	}
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to list accounts")
	}

	names := newNameResolver(ctx, s.store, s.cache)
	views := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, models.NewAccountView(a, names.customer(a.CustomerID), names.employee(a.CreatedByEmployeeID)))
	}
	return views, nil
}

func (s *AccountQueryService) view(ctx context.Context, a models.Account) *models.AccountView {
	names := newNameResolver(ctx, s.store, s.cache)
	v := models.NewAccountView(a, names.customer(a.CustomerID), names.employee(a.CreatedByEmployeeID))
	return &v
}
