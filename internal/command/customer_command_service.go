package command

import (
	"context"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/events"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/utils"
)

// CustomerCommandService owns customer writes: the creating-employee
// reference, email and SSN uniqueness and the no-dependent-accounts rule on
// delete.
type CustomerCommandService struct {
	store repository.Store
	deps
}

func NewCustomerCommandService(store repository.Store, opts ...Option) *CustomerCommandService {
	return &CustomerCommandService{store: store, deps: newDeps(opts)}
}

func (s *CustomerCommandService) CreateCustomer(ctx context.Context, cmd cqrs.CreateCustomerCommand) (*models.CustomerView, error) {
	now := s.now()
	customer := &models.Customer{
		ID:                  utils.GenerateID(utils.CustomerIDPrefix),
		CreatedByEmployeeID: cmd.EmployeeID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	applyCustomerData(customer, cmd.CustomerData)

	var employee *models.Employee
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		var err error
		employee, err = tx.Employees().GetForShare(ctx, cmd.EmployeeID)
		if err != nil {
			return dErrors.FromStore(err, "employee not found")
		}

		repo := tx.Customers()
		if err := checkCustomerEmail(ctx, repo, customer.Email); err != nil {
			return err
		}
		if err := checkCustomerSSN(ctx, repo, customer.SSN); err != nil {
			return err
		}
		return repo.Create(ctx, customer)
	})
	if err != nil {
		return nil, dErrors.FromStore(err, "email or SSN already exists")
	}

	s.logger.InfoContext(ctx, "customer created", "customer_id", customer.ID, "employee_id", employee.ID)
	s.publish(ctx, events.CustomerEventsStream, events.CustomerCreated, events.CustomerCreatedEvent{
		CustomerID: customer.ID,
		EmployeeID: employee.ID,
		Name:       customer.FullName(),
	})

	view := models.NewCustomerView(*customer, employee.FullName(), 0)
	return &view, nil
}

// UpdateCustomer replaces the customer's data. Email and SSN are only
// re-checked for uniqueness when they change.
func (s *CustomerCommandService) UpdateCustomer(ctx context.Context, cmd cqrs.UpdateCustomerCommand) (*models.CustomerView, error) {
	var view models.CustomerView
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		repo := tx.Customers()
		customer, err := repo.GetForUpdate(ctx, cmd.CustomerID)
		if err != nil {
			return dErrors.FromStore(err, "customer not found")
		}

		if cmd.Email != customer.Email {
			if err := checkCustomerEmail(ctx, repo, cmd.Email); err != nil {
				return err
			}
		}
		if cmd.SSN != customer.SSN {
			if err := checkCustomerSSN(ctx, repo, cmd.SSN); err != nil {
				return err
			}
		}

		applyCustomerData(customer, cmd.CustomerData)
		customer.UpdatedAt = s.now()
		if err := repo.Update(ctx, customer); err != nil {
			return err
		}

		accounts, err := tx.Accounts().CountByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		var createdBy string
		if employee, err := tx.Employees().GetByID(ctx, customer.CreatedByEmployeeID); err == nil {
			createdBy = employee.FullName()
		}
		view = models.NewCustomerView(*customer, createdBy, accounts)
		return nil
	})
	if err != nil {
		return nil, dErrors.FromStore(err, "email or SSN already exists")
	}

	s.cache.InvalidateCustomer(ctx, view.ID)
	s.publish(ctx, events.CustomerEventsStream, events.CustomerUpdated, events.CustomerUpdatedEvent{
		CustomerID: view.ID,
		Name:       view.FullName(),
	})
	return &view, nil
}

func (s *CustomerCommandService) DeleteCustomer(ctx context.Context, cmd cqrs.DeleteCustomerCommand) error {
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Customers().GetForUpdate(ctx, cmd.CustomerID); err != nil {
			return dErrors.FromStore(err, "customer not found")
		}

		accounts, err := tx.Accounts().CountByCustomer(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		if accounts > 0 {
			s.metrics.IncrementGuardRejection("customer")
			return dErrors.New(dErrors.CodeDependency, "customer has accounts and cannot be deleted")
		}
		return tx.Customers().Delete(ctx, cmd.CustomerID)
	})
	if err != nil {
		return dErrors.FromStore(err, "customer has accounts and cannot be deleted")
	}

	s.cache.InvalidateCustomer(ctx, cmd.CustomerID)
	s.logger.InfoContext(ctx, "customer deleted", "customer_id", cmd.CustomerID)
	s.publish(ctx, events.CustomerEventsStream, events.CustomerDeleted, events.CustomerDeletedEvent{
		CustomerID: cmd.CustomerID,
	})
	return nil
}

func applyCustomerData(c *models.Customer, data cqrs.CustomerData) {
	c.FirstName = data.FirstName
	c.LastName = data.LastName
	c.Email = data.Email
	c.PhoneNumber = data.PhoneNumber
	c.Address = data.Address
	c.DateOfBirth = data.DateOfBirth
	c.SSN = data.SSN
}

func checkCustomerEmail(ctx context.Context, repo repository.CustomerRepository, email string) error {
	taken, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return dErrors.New(dErrors.CodeConflict, "email already exists")
	}
	return nil
}

func checkCustomerSSN(ctx context.Context, repo repository.CustomerRepository, ssn string) error {
	taken, err := repo.ExistsBySSN(ctx, ssn)
	if err != nil {
		return err
	}
	if taken {
		return dErrors.New(dErrors.CodeConflict, "SSN already exists")
	}
	return nil
}
