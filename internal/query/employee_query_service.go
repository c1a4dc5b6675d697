package query

import (
	"context"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
)

// EmployeeQueryService reads employees. Every view carries a freshly counted
// customerCount.
type EmployeeQueryService struct {
	store repository.Store
	deps
}

func NewEmployeeQueryService(store repository.Store, opts ...Option) *EmployeeQueryService {
	return &EmployeeQueryService{store: store, deps: newDeps(opts)}
}

func (s *EmployeeQueryService) GetEmployee(ctx context.Context, q cqrs.GetEmployeeQuery) (*models.EmployeeView, error) {
	e, err := s.cache.Employee(ctx, s.store.Employees(), q.EmployeeID)
	if err != nil {
		return nil, dErrors.FromStore(err, "employee not found")
	}
	return s.view(ctx, *e)
}

func (s *EmployeeQueryService) GetEmployeeByUsername(ctx context.Context, q cqrs.GetEmployeeByUsernameQuery) (*models.EmployeeView, error) {
	e, err := s.store.Employees().GetByUsername(ctx, q.Username)
	if err != nil {
		return nil, dErrors.FromStore(err, "employee not found")
	}
	return s.view(ctx, *e)
}

func (s *EmployeeQueryService) ListEmployees(ctx context.Context, q cqrs.ListEmployeesQuery) ([]models.EmployeeView, error) {
	var (
		employees []models.Employee
		err       error
	)
	if q.Role != "" {
		if !q.Role.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, "role must be ADMIN or EMPLOYEE")
		}
		employees, err = s.store.Employees().ListByRole(ctx, q.Role)
	} else {
		employees, err = s.store.Employees().List(ctx)
	}
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to list employees")
	}

	views := make([]models.EmployeeView, 0, len(employees))
	for _, e := range employees {
		v, err := s.view(ctx, e)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// CountEmployees counts by role, or every employee when Role is empty.
func (s *EmployeeQueryService) CountEmployees(ctx context.Context, q cqrs.CountEmployeesQuery) (int64, error) {
	var (
		n   int64
		err error
	)
	if q.Role != "" {
		if !q.Role.Valid() {
			return 0, dErrors.New(dErrors.CodeValidation, "role must be ADMIN or EMPLOYEE")
		}
		n, err = s.store.Employees().CountByRole(ctx, q.Role)
	} else {
		n, err = s.store.Employees().Count(ctx)
	}
	if err != nil {
		return 0, dErrors.FromStore(err, "failed to count employees")
	}
	return n, nil
}

func (s *EmployeeQueryService) view(ctx context.Context, e models.Employee) (*models.EmployeeView, error) {
	customers, err := s.store.Customers().CountByEmployee(ctx, e.ID)
	if err != nil {
		return nil, dErrors.FromStore(err, "failed to count customers")
	}
	v := models.NewEmployeeView(e, customers)
	return &v, nil
}
