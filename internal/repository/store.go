package repository

import (
	"context"

	"github.com/krbank/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// EmployeeRepository is the storage contract for the identity registry.
// Lookups that miss return an error wrapping sentinel.ErrNotFound; unique-key
// collisions return sentinel.ErrConflict.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Employee, error)
	// GetForShare blocks concurrent deletes of the row until the surrounding
	// transaction ends.
	GetForShare(ctx context.Context, id string) (*models.Employee, error)
	GetByUsername(ctx context.Context, username string) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.Employee, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetForUpdate(ctx context.Context, id string) (*models.Customer, error)
	GetForShare(ctx context.Context, id string) (*models.Customer, error)
	// List returns every customer, most recently created first.
	List(ctx context.Context) ([]models.Customer, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Customer, error)
	// Search matches term case-insensitively against first name, last name
	// and email.
	Search(ctx context.Context, term string) ([]models.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsBySSN(ctx context.Context, ssn string) (bool, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
}

// AccountRepository never rewrites account_number or customer_id on Update.
// Listings are most recently created first.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetForUpdate(ctx context.Context, id string) (*models.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Account, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Account, error)
	ListByType(ctx context.Context, accountType models.AccountType) ([]models.Account, error)
	ListByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
	// SumBalanceByStatus returns zero when no account has the status.
	SumBalanceByStatus(ctx context.Context, status models.AccountStatus) (decimal.Decimal, error)
	CountByType(ctx context.Context) (map[models.AccountType]int64, error)
	CountByStatus(ctx context.Context) (map[models.AccountStatus]int64, error)
}

// Tx is the set of repositories bound to one unit of work.
type Tx interface {
	Employees() EmployeeRepository
	Customers() CustomerRepository
	Accounts() AccountRepository
}

// Store is the persistent-store collaborator. Repositories returned directly
// run each call on its own; RunInTx groups calls into one atomic unit that is
// rolled back when fn returns an error.
type Store interface {
	Tx
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
