package query

import (
	"context"
	"strings"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
)

// CustomerQueryService reads customers. accountCount is counted on every
// read, never stored.
type CustomerQueryService struct {
	store repository.Store
	deps
}

func NewCustomerQueryService(store repository.Store, opts ...Option) *CustomerQueryService {
	return &CustomerQueryService{store: store, deps: newDeps(opts)}
}

func (s *CustomerQueryService) GetCustomer(ctx context.Context, q cqrs.GetCustomerQuery) (*models.CustomerView, error) {
	c, err := s.cache.Customer(ctx, s.store.Customers(), q.CustomerID)
	if err != nil {
		return nil, dErrors.FromStore(err, "customer not found")
	}
	views, err := s.views(ctx, []models.Customer{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListCustomers returns customers most recently created first, optionally
// only those created by one employee.
func (s *CustomerQueryService) ListCustomers(ctx context.Context, q cqrs.ListCustomersQuery) ([]models.CustomerView, error) {
	var (
		customers []models.Customer
		err       error
	)
	if q.EmployeeID != "" {
		customers, err = s.store.Customers().ListByEmployee(ctx, q.EmployeeID)
	} else {
		customers, err = s.store.Customers().List(ctx)
	}
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to list customers")
	}
	return s.views(ctx, customers)
}

// ListCustomersWithAccounts returns every customer, most recent first, with
// its accounts populated.
func (s *CustomerQueryService) ListCustomersWithAccounts(ctx context.Context) ([]models.CustomerView, error) {
	customers, err := s.store.Customers().List(ctx)
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to list customers")
	}
	accounts, err := s.store.Accounts().List(ctx)
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to list accounts")
	}

	names := newNameResolver(ctx, s.store, s.cache)
	byCustomer := map[string][]models.AccountView{}
	for _, a := range accounts {
		byCustomer[a.CustomerID] = append(byCustomer[a.CustomerID],
			models.NewAccountView(a, names.customer(a.CustomerID), names.employee(a.CreatedByEmployeeID)))
	}

	views := make([]models.CustomerView, 0, len(customers))
	for _, c := range customers {
		own := byCustomer[c.ID]
		if own == nil {
			own = []models.AccountView{}
		}
		v := models.NewCustomerView(c, names.employee(&c.CreatedByEmployeeID), int64(len(own)))
		v.Accounts = own
		views = append(views, v)
	}
	return views, nil
}

// SearchCustomers matches the term case-insensitively against first name,
// last name and email. No match is an empty result, not an error; a blank
// term matches every customer.
func (s *CustomerQueryService) SearchCustomers(ctx context.Context, q cqrs.SearchCustomersQuery) ([]models.CustomerView, error) {
	customers, err := s.store.Customers().Search(ctx, strings.TrimSpace(q.Term))
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to search customers")
	}
	return s.views(ctx, customers)
}

func (s *CustomerQueryService) CountCustomers(ctx context.Context, q cqrs.CountCustomersQuery) (int64, error) {
	var (
		n   int64
		err error
	)
	if q.EmployeeID != "" {
		n, err = s.store.Customers().CountByEmployee(ctx, q.EmployeeID)
	} else {
		n, err = s.store.Customers().Count(ctx)
	}
	if err != nil {
		return 0, dErrors.FromStore(err, "failed to count customers")
	}
	return n, nil
}

func (s *CustomerQueryService) views(ctx context.Context, customers []models.Customer) ([]models.CustomerView, error) {
	names := newNameResolver(ctx, s.store, s.cache)
	views := make([]models.CustomerView, 0, len(customers))
	for _, c := range customers {
		accounts, err := s.store.Accounts().CountByCustomer(ctx, c.ID)
		if err != nil {
			return nil, dErrors.FromStore(err, "failed to count accounts")
		}
		views = append(views, models.NewCustomerView(c, names.employee(&c.CreatedByEmployeeID), accounts))
	}
	return views, nil
}
