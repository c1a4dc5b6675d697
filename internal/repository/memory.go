package repository

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/sentinel"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process Store with the same constraints as the
// PostgreSQL schema: unique keys, foreign keys with RESTRICT on delete and
// SET NULL for an account's creating employee. Transactions are serialised
// behind a single lock and rolled back by restoring a snapshot.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[string]models.Employee
	customers map[string]models.Customer
	accounts  map[string]models.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: map[string]models.Employee{},
		customers: map[string]models.Customer{},
		accounts:  map[string]models.Account{},
	}
}

func (s *MemoryStore) Employees() EmployeeRepository { return &memEmployees{s: s} }
func (s *MemoryStore) Customers() CustomerRepository { return &memCustomers{s: s} }
func (s *MemoryStore) Accounts() AccountRepository   { return &memAccounts{s: s} }

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	employees := maps.Clone(s.employees)
	customers := maps.Clone(s.customers)
	accounts := maps.Clone(s.accounts)

	if err := fn(memTx{s: s}); err != nil {
		s.employees, s.customers, s.accounts = employees, customers, accounts
		return err
	}
	return nil
}

type memTx struct {
	s *MemoryStore
}

func (t memTx) Employees() EmployeeRepository { return &memEmployees{s: t.s, inTx: true} }
func (t memTx) Customers() CustomerRepository { return &memCustomers{s: t.s, inTx: true} }
func (t memTx) Accounts() AccountRepository   { return &memAccounts{s: t.s, inTx: true} }

// guard holds the lock unless the caller already runs inside RunInTx.
type guard struct {
	s    *MemoryStore
	inTx bool
}

func (g guard) read() func() {
	if g.inTx {
		return func() {}
	}
	g.s.mu.RLock()
	return g.s.mu.RUnlock
}

func (g guard) write() func() {
	if g.inTx {
		return func() {}
	}
	g.s.mu.Lock()
	return g.s.mu.Unlock
}

func conflict(entity, field string) error {
	return fmt.Errorf("%s %s: %w", entity, field, sentinel.ErrConflict)
}

func dependency(entity, reason string) error {
	return fmt.Errorf("%s: %s: %w", entity, reason, sentinel.ErrDependency)
}

// newestFirst orders by creation time descending with id as tie-break.
func newestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		if c := createdAt(b).Compare(createdAt(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ---------- employees ----------

type memEmployees struct {
	s    *MemoryStore
	inTx bool
}

func (r *memEmployees) g() guard { return guard{s: r.s, inTx: r.inTx} }

func (r *memEmployees) uniqueViolation(e *models.Employee) error {
	for _, other := range r.s.employees {
		if other.ID == e.ID {
			continue
		}
		if other.Username == e.Username {
			return conflict("employee", "username")
		}
		if other.Email == e.Email {
			return conflict("employee", "email")
		}
	}
	return nil
}

func (r *memEmployees) Create(_ context.Context, e *models.Employee) error {
	defer r.g().write()()
	if _, ok := r.s.employees[e.ID]; ok {
		return conflict("employee", "id")
	}
	if err := r.uniqueViolation(e); err != nil {
		return err
	}
	r.s.employees[e.ID] = *e
	return nil
}

func (r *memEmployees) GetByID(_ context.Context, id string) (*models.Employee, error) {
	defer r.g().read()()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, notFound("employee", id)
	}
	return &e, nil
}

func (r *memEmployees) GetForUpdate(ctx context.Context, id string) (*models.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *memEmployees) GetForShare(ctx context.Context, id string) (*models.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *memEmployees) GetByUsername(_ context.Context, username string) (*models.Employee, error) {
	defer r.g().read()()
	for _, e := range r.s.employees {
		if e.Username == username {
			return &e, nil
		}
	}
	return nil, notFound("employee", username)
}

func (r *memEmployees) filter(keep func(models.Employee) bool) []models.Employee {
	defer r.g().read()()
	out := []models.Employee{}
	for _, e := range r.s.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b models.Employee) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (r *memEmployees) List(context.Context) ([]models.Employee, error) {
	return r.filter(func(models.Employee) bool { return true }), nil
}

func (r *memEmployees) ListByRole(_ context.Context, role models.Role) ([]models.Employee, error) {
	return r.filter(func(e models.Employee) bool { return e.Role == role }), nil
}

func (r *memEmployees) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return len(r.filter(func(e models.Employee) bool { return e.Username == username })) > 0, nil
}

func (r *memEmployees) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return len(r.filter(func(e models.Employee) bool { return e.Email == email })) > 0, nil
}

func (r *memEmployees) Update(_ context.Context, e *models.Employee) error {
	defer r.g().write()()
	current, ok := r.s.employees[e.ID]
	if !ok {
		return notFound("employee", e.ID)
	}
	if err := r.uniqueViolation(e); err != nil {
		return err
	}
	current.Username = e.Username
	current.FirstName = e.FirstName
	current.LastName = e.LastName
	current.Email = e.Email
	current.Role = e.Role
	current.UpdatedAt = e.UpdatedAt
	r.s.employees[e.ID] = current
	return nil
}

func (r *memEmployees) Delete(_ context.Context, id string) error {
	defer r.g().write()()
	if _, ok := r.s.employees[id]; !ok {
		return notFound("employee", id)
	}
	for _, c := range r.s.customers {
		if c.CreatedByEmployeeID == id {
			return dependency("employee", "referenced by customers")
		}
	}
	for accountID, a := range r.s.accounts {
		if a.CreatedByEmployeeID != nil && *a.CreatedByEmployeeID == id {
			a.CreatedByEmployeeID = nil
			r.s.accounts[accountID] = a
		}
	}
	delete(r.s.employees, id)
	return nil
}

func (r *memEmployees) Count(context.Context) (int64, error) {
	defer r.g().read()()
	return int64(len(r.s.employees)), nil
}

func (r *memEmployees) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	list, _ := r.ListByRole(ctx, role)
	return int64(len(list)), nil
}

// ---------- customers ----------

type memCustomers struct {
	s    *MemoryStore
	inTx bool
}

func (r *memCustomers) g() guard { return guard{s: r.s, inTx: r.inTx} }

func (r *memCustomers) uniqueViolation(c *models.Customer) error {
	for _, other := range r.s.customers {
		if other.ID == c.ID {
			continue
		}
		if other.Email == c.Email {
			return conflict("customer", "email")
		}
		if other.SSN == c.SSN {
			return conflict("customer", "ssn")
		}
	}
	return nil
}

func (r *memCustomers) Create(_ context.Context, c *models.Customer) error {
	defer r.g().write()()
	if _, ok := r.s.customers[c.ID]; ok {
		return conflict("customer", "id")
	}
	if err := r.uniqueViolation(c); err != nil {
		return err
	}
	if _, ok := r.s.employees[c.CreatedByEmployeeID]; !ok {
		return dependency("customer", "creating employee does not exist")
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r *memCustomers) GetByID(_ context.Context, id string) (*models.Customer, error) {
	defer r.g().read()()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, notFound("customer", id)
	}
	return &c, nil
}

func (r *memCustomers) GetForUpdate(ctx context.Context, id string) (*models.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *memCustomers) GetForShare(ctx context.Context, id string) (*models.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *memCustomers) filter(keep func(models.Customer) bool) []models.Customer {
	defer r.g().read()()
	out := []models.Customer{}
	for _, c := range r.s.customers {
		if keep(c) {
			out = append(out, c)
		}
	}
	newestFirst(out,
		func(c models.Customer) time.Time { return c.CreatedAt },
		func(c models.Customer) string { return c.ID })
	return out
}

func (r *memCustomers) List(context.Context) ([]models.Customer, error) {
	return r.filter(func(models.Customer) bool { return true }), nil
}

func (r *memCustomers) ListByEmployee(_ context.Context, employeeID string) ([]models.Customer, error) {
	return r.filter(func(c models.Customer) bool { return c.CreatedByEmployeeID == employeeID }), nil
}

func (r *memCustomers) Search(_ context.Context, term string) ([]models.Customer, error) {
	return r.filter(func(c models.Customer) bool {
		return containsFold(c.FirstName, term) || containsFold(c.LastName, term) || containsFold(c.Email, term)
	}), nil
}

func (r *memCustomers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return len(r.filter(func(c models.Customer) bool { return c.Email == email })) > 0, nil
}

func (r *memCustomers) ExistsBySSN(_ context.Context, ssn string) (bool, error) {
	return len(r.filter(func(c models.Customer) bool { return c.SSN == ssn })) > 0, nil
}

func (r *memCustomers) Update(_ context.Context, c *models.Customer) error {
	defer r.g().write()()
	current, ok := r.s.customers[c.ID]
	if !ok {
		return notFound("customer", c.ID)
	}
	if err := r.uniqueViolation(c); err != nil {
		return err
	}
	current.FirstName = c.FirstName
	current.LastName = c.LastName
	current.Email = c.Email
	current.PhoneNumber = c.PhoneNumber
	current.Address = c.Address
	current.DateOfBirth = c.DateOfBirth
	current.SSN = c.SSN
	current.UpdatedAt = c.UpdatedAt
	r.s.customers[c.ID] = current
	return nil
}

func (r *memCustomers) Delete(_ context.Context, id string) error {
	defer r.g().write()()
	if _, ok := r.s.customers[id]; !ok {
		return notFound("customer", id)
	}
	for _, a := range r.s.accounts {
		if a.CustomerID == id {
			return dependency("customer", "referenced by accounts")
		}
	}
	delete(r.s.customers, id)
	return nil
}

func (r *memCustomers) Count(context.Context) (int64, error) {
	defer r.g().read()()
	return int64(len(r.s.customers)), nil
}

func (r *memCustomers) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	list, _ := r.ListByEmployee(ctx, employeeID)
	return int64(len(list)), nil
}

// ---------- accounts ----------

type memAccounts struct {
	s    *MemoryStore
	inTx bool
}

func (r *memAccounts) g() guard { return guard{s: r.s, inTx: r.inTx} }

func (r *memAccounts) Create(_ context.Context, a *models.Account) error {
	defer r.g().write()()
	if _, ok := r.s.accounts[a.ID]; ok {
		return conflict("account", "id")
	}
	for _, other := range r.s.accounts {
		if other.AccountNumber == a.AccountNumber {
			return conflict("account", "account_number")
		}
	}
	if a.Balance.IsNegative() || a.InterestRate.IsNegative() {
		return fmt.Errorf("account: negative amount rejected by check constraint")
	}
	if _, ok := r.s.customers[a.CustomerID]; !ok {
		return dependency("account", "customer does not exist")
	}
	if a.CreatedByEmployeeID != nil {
		if _, ok := r.s.employees[*a.CreatedByEmployeeID]; !ok {
			return dependency("account", "creating employee does not exist")
		}
	}
	stored := *a
	stored.Balance = a.Balance.Round(2)
	stored.InterestRate = a.InterestRate.Round(2)
	r.s.accounts[a.ID] = stored
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	defer r.g().read()()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, notFound("account", id)
	}
	return &a, nil
}

func (r *memAccounts) GetForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *memAccounts) GetByAccountNumber(_ context.Context, accountNumber string) (*models.Account, error) {
	defer r.g().read()()
	for _, a := range r.s.accounts {
		if a.AccountNumber == accountNumber {
			return &a, nil
		}
	}
	return nil, notFound("account", accountNumber)
}

func (r *memAccounts) filter(keep func(models.Account) bool) []models.Account {
	defer r.g().read()()
	out := []models.Account{}
	for _, a := range r.s.accounts {
		if keep(a) {
			out = append(out, a)
		}
	}
	newestFirst(out,
		func(a models.Account) time.Time { return a.CreatedAt },
		func(a models.Account) string { return a.ID })
	return out
}

func (r *memAccounts) List(context.Context) ([]models.Account, error) {
	return r.filter(func(models.Account) bool { return true }), nil
}

func (r *memAccounts) ListByCustomer(_ context.Context, customerID string) ([]models.Account, error) {
	return r.filter(func(a models.Account) bool { return a.CustomerID == customerID }), nil
}

func (r *memAccounts) ListByEmployee(_ context.Context, employeeID string) ([]models.Account, error) {
	return r.filter(func(a models.Account) bool {
		return a.CreatedByEmployeeID != nil && *a.CreatedByEmployeeID == employeeID
	}), nil
}

func (r *memAccounts) ListByType(_ context.Context, accountType models.AccountType) ([]models.Account, error) {
	return r.filter(func(a models.Account) bool { return a.AccountType == accountType }), nil
}

func (r *memAccounts) ListByStatus(_ context.Context, status models.AccountStatus) ([]models.Account, error) {
	return r.filter(func(a models.Account) bool { return a.Status == status }), nil
}

func (r *memAccounts) Update(_ context.Context, a *models.Account) error {
	defer r.g().write()()
	current, ok := r.s.accounts[a.ID]
	if !ok {
		return notFound("account", a.ID)
	}
	if a.Balance.IsNegative() || a.InterestRate.IsNegative() {
		return fmt.Errorf("account: negative amount rejected by check constraint")
	}
	current.Balance = a.Balance.Round(2)
	current.InterestRate = a.InterestRate.Round(2)
	current.CreditLimit = a.CreditLimit
	current.Status = a.Status
	current.UpdatedAt = a.UpdatedAt
	r.s.accounts[a.ID] = current
	return nil
}

func (r *memAccounts) Delete(_ context.Context, id string) error {
	defer r.g().write()()
	if _, ok := r.s.accounts[id]; !ok {
		return notFound("account", id)
	}
	delete(r.s.accounts, id)
	return nil
}

func (r *memAccounts) Count(context.Context) (int64, error) {
	defer r.g().read()()
	return int64(len(r.s.accounts)), nil
}

func (r *memAccounts) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	list, _ := r.ListByCustomer(ctx, customerID)
	return int64(len(list)), nil
}

func (r *memAccounts) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	list, _ := r.ListByEmployee(ctx, employeeID)
	return int64(len(list)), nil
}

func (r *memAccounts) SumBalanceByStatus(ctx context.Context, status models.AccountStatus) (decimal.Decimal, error) {
	list, _ := r.ListByStatus(ctx, status)
	sum := decimal.Zero
	for _, a := range list {
		sum = sum.Add(a.Balance)
	}
	return sum, nil
}

func (r *memAccounts) CountByType(ctx context.Context) (map[models.AccountType]int64, error) {
	list, _ := r.List(ctx)
	counts := map[models.AccountType]int64{}
	for _, a := range list {
		counts[a.AccountType]++
	}
	return counts, nil
}

func (r *memAccounts) CountByStatus(ctx context.Context) (map[models.AccountStatus]int64, error) {
	list, _ := r.List(ctx)
	counts := map[models.AccountStatus]int64{}
	for _, a := range list {
		counts[a.Status]++
	}
	return counts, nil
}
