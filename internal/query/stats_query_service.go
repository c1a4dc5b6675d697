package query

import (
	"context"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// StatsQueryService computes reporting aggregates. Nothing is cached; every
// call reads the store.
type StatsQueryService struct {
	store repository.Store
	deps
}

func NewStatsQueryService(store repository.Store, opts ...Option) *StatsQueryService {
	return &StatsQueryService{store: store, deps: newDeps(opts)}
}

func (s *StatsQueryService) CountAccounts(ctx context.Context, q cqrs.CountAccountsQuery) (int64, error) {
	repo := s.store.Accounts()
	var (
		n   int64
		err error
	)
	switch {
	case q.CustomerID != "":
		n, err = repo.CountByCustomer(ctx, q.CustomerID)
	case q.EmployeeID != "":
		n, err = repo.CountByEmployee(ctx, q.EmployeeID)
	default:
		n, err = repo.Count(ctx)
	}
	if err != nil {
		return 0, dErrors.FromStore(err, "failed to count accounts")
	}
	return n, nil
}

// TotalActiveBalance sums balances of ACTIVE accounts; zero when there are none.
func (s *StatsQueryService) TotalActiveBalance(ctx context.Context) (decimal.Decimal, error) {
	sum, err := s.store.Accounts().SumBalanceByStatus(ctx, models.AccountStatusActive)
	if err != nil {
		return decimal.Zero, dErrors.FromStore(err, "failed to sum balances")
	}
	return sum, nil
}

// CountByType reports every account type, including those with no accounts.
func (s *StatsQueryService) CountByType(ctx context.Context) (map[models.AccountType]int64, error) {
	raw, err := s.store.Accounts().CountByType(ctx)
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to count accounts by type")
	}
	counts := make(map[models.AccountType]int64, len(models.AccountTypes()))
	for _, t := range models.AccountTypes() {
		counts[t] = raw[t]
	}
	return counts, nil
}

// CountByStatus reports every status, including those with no accounts.
func (s *StatsQueryService) CountByStatus(ctx context.Context) (map[models.AccountStatus]int64, error) {
	raw, err := s.store.Accounts().CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to count accounts by status")
	}
	counts := make(map[models.AccountStatus]int64, len(models.AccountStatuses()))
	for _, st := range models.AccountStatuses() {
		counts[st] = raw[st]
	}
	return counts, nil
}

// Summary gathers the dashboard figures concurrently.
func (s *StatsQueryService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		summary.CustomerCount, err = s.store.Customers().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.EmployeeCount, err = s.store.Employees().CountByRole(gctx, models.RoleEmployee)
		return err
	})
	g.Go(func() (err error) {
		summary.AdminCount, err = s.store.Employees().CountByRole(gctx, models.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		summary.AccountCount, err = s.store.Accounts().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalActiveBalance, err = s.store.Accounts().SumBalanceByStatus(gctx, models.AccountStatusActive)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.FromStore(err, "failed to build summary")
	}
	return &summary, nil
}
