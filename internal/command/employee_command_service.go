package command

import (
	"context"
	"errors"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/events"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/utils"
)

// EmployeeCommandService owns the identity registry writes: username and
// email uniqueness, role classification and the no-dependent-customers rule
// on delete.
type EmployeeCommandService struct {
	store  repository.Store
	hasher Hasher
	deps
}

func NewEmployeeCommandService(store repository.Store, hasher Hasher, opts ...Option) *EmployeeCommandService {
	return &EmployeeCommandService{store: store, hasher: hasher, deps: newDeps(opts)}
}

func (s *EmployeeCommandService) CreateEmployee(ctx context.Context, cmd cqrs.CreateEmployeeCommand) (*models.EmployeeView, error) {
	if !cmd.Role.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be ADMIN or EMPLOYEE")
	}
	digest, err := s.hasher.Hash(cmd.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "password must be at most 72 bytes")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := s.now()
	employee := &models.Employee{
		ID:           utils.GenerateID(utils.EmployeeIDPrefix),
		Username:     cmd.Username,
		PasswordHash: digest,
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		Email:        cmd.Email,
		Role:         cmd.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.RunInTx(ctx, func(tx repository.Tx) error {
		repo := tx.Employees()
		taken, err := repo.ExistsByUsername(ctx, employee.Username)
		if err != nil {
			return err
		}
		if taken {
			return dErrors.New(dErrors.CodeConflict, "username already exists")
		}
		taken, err = repo.ExistsByEmail(ctx, employee.Email)
		if err != nil {
			return err
		}
		if taken {
			return dErrors.New(dErrors.CodeConflict, "email already exists")
		}
		return repo.Create(ctx, employee)
	})
	if err != nil {
		return nil, dErrors.FromStore(err, "username or email already exists")
	}

	s.logger.InfoContext(ctx, "employee created", "employee_id", employee.ID, "role", employee.Role)
	s.publish(ctx, events.EmployeeEventsStream, events.EmployeeCreated, events.EmployeeCreatedEvent{
		EmployeeID: employee.ID,
		Username:   employee.Username,
		Role:       string(employee.Role),
	})

	view := models.NewEmployeeView(*employee, 0)
	return &view, nil
}

func (s *EmployeeCommandService) UpdateEmployee(ctx context.Context, cmd cqrs.UpdateEmployeeCommand) (*models.EmployeeView, error) {
	if !cmd.Role.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be ADMIN or EMPLOYEE")
	}

	var view models.EmployeeView
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		repo := tx.Employees()
		employee, err := repo.GetForUpdate(ctx, cmd.EmployeeID)
		if err != nil {
			return dErrors.FromStore(err, "employee not found")
		}

		if cmd.Username != employee.Username {
			taken, err := repo.ExistsByUsername(ctx, cmd.Username)
			if err != nil {
				return err
			}
			if taken {
				return dErrors.New(dErrors.CodeConflict, "username already exists")
			}
		}
		if cmd.Email != employee.Email {
			taken, err := repo.ExistsByEmail(ctx, cmd.Email)
			if err != nil {
				return err
			}
			if taken {
				return dErrors.New(dErrors.CodeConflict, "email already exists")
			}
		}

		employee.Username = cmd.Username
		employee.FirstName = cmd.FirstName
		employee.LastName = cmd.LastName
		employee.Email = cmd.Email
		employee.Role = cmd.Role
		employee.UpdatedAt = s.now()
		if err := repo.Update(ctx, employee); err != nil {
			return err
		}

		customers, err := tx.Customers().CountByEmployee(ctx, employee.ID)
		if err != nil {
			return err
		}
		view = models.NewEmployeeView(*employee, customers)
		return nil
	})
	if err != nil {
		return nil, dErrors.FromStore(err, "username or email already exists")
	}

	s.cache.InvalidateEmployee(ctx, view.ID)
	s.publish(ctx, events.EmployeeEventsStream, events.EmployeeUpdated, events.EmployeeUpdatedEvent{
		EmployeeID: view.ID,
		Username:   view.Username,
		Role:       string(view.Role),
	})
	return &view, nil
}

// DeleteEmployee removes an employee that created no customers. Accounts the
// employee opened lose their creator reference.
func (s *EmployeeCommandService) DeleteEmployee(ctx context.Context, cmd cqrs.DeleteEmployeeCommand) error {
	var openedAccounts []models.Account
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Employees().GetForUpdate(ctx, cmd.EmployeeID); err != nil {
			return dErrors.FromStore(err, "employee not found")
		}

		customers, err := tx.Customers().CountByEmployee(ctx, cmd.EmployeeID)
		if err != nil {
			return err
		}
		if customers > 0 {
			s.metrics.IncrementGuardRejection("employee")
			return dErrors.New(dErrors.CodeDependency, "employee has customers and cannot be deleted")
		}

		openedAccounts, err = tx.Accounts().ListByEmployee(ctx, cmd.EmployeeID)
		if err != nil {
			return err
		}
		return tx.Employees().Delete(ctx, cmd.EmployeeID)
	})
	if err != nil {
		return dErrors.FromStore(err, "employee has customers and cannot be deleted")
	}

	s.cache.InvalidateEmployee(ctx, cmd.EmployeeID)
	for _, a := range openedAccounts {
		s.cache.InvalidateAccount(ctx, a.ID)
	}
	s.logger.InfoContext(ctx, "employee deleted", "employee_id", cmd.EmployeeID)
	s.publish(ctx, events.EmployeeEventsStream, events.EmployeeDeleted, events.EmployeeDeletedEvent{
		EmployeeID: cmd.EmployeeID,
	})
	return nil
}
