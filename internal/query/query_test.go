package query

import (
	"context"
	"testing"
	"time"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type QuerySuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.MemoryStore
	clock time.Time

	employees *EmployeeQueryService
	customers *CustomerQueryService
	accounts  *AccountQueryService
	stats     *StatsQueryService
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.clock = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	s.employees = NewEmployeeQueryService(s.store)
	s.customers = NewCustomerQueryService(s.store)
	s.accounts = NewAccountQueryService(s.store)
	s.stats = NewStatsQueryService(s.store)
}

func (s *QuerySuite) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *QuerySuite) addEmployee(id, username string, role models.Role) {
	now := s.tick()
	s.Require().NoError(s.store.Employees().Create(s.ctx, &models.Employee{
		ID: id, Username: username, PasswordHash: "digest", FirstName: "Emp", LastName: username,
		Email: username + "@bank.local", Role: role, CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *QuerySuite) addCustomer(id, first, last, email, ssn, employeeID string) {
	now := s.tick()
	s.Require().NoError(s.store.Customers().Create(s.ctx, &models.Customer{
		ID: id, FirstName: first, LastName: last, Email: email, PhoneNumber: "+15551234567",
		SSN: ssn, CreatedByEmployeeID: employeeID, CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *QuerySuite) addAccount(id string, accountType models.AccountType, status models.AccountStatus, balance, customerID, employeeID string) {
	now := s.tick()
	s.Require().NoError(s.store.Accounts().Create(s.ctx, &models.Account{
		ID: id, AccountNumber: utils.GenerateAccountNumber(accountType, now), AccountType: accountType,
		Balance: decimal.RequireFromString(balance), InterestRate: accountType.DefaultInterestRate(),
		Status: status, CustomerID: customerID, CreatedByEmployeeID: &employeeID,
		CreatedAt: now, UpdatedAt: now,
	}))
}

// seed: one admin, one employee, John Doe with two active accounts and one
// closed account, Jane Smith with none.
func (s *QuerySuite) seed() {
	s.addEmployee("emp-admin", "admin", models.RoleAdmin)
	s.addEmployee("emp-1", "employee1", models.RoleEmployee)
	s.addCustomer("cus-john", "John", "Doe", "john@example.com", "123-45-6789", "emp-1")
	s.addCustomer("cus-jane", "Jane", "Smith", "jane@example.com", "987-65-4321", "emp-1")
	s.addAccount("acc-1", models.AccountTypeSavings, models.AccountStatusActive, "100.00", "cus-john", "emp-1")
	s.addAccount("acc-2", models.AccountTypeChecking, models.AccountStatusActive, "50.00", "cus-john", "emp-1")
	s.addAccount("acc-3", models.AccountTypeSavings, models.AccountStatusClosed, "9999.00", "cus-john", "emp-admin")
}

func (s *QuerySuite) TestSearch() {
	s.seed()

	found, err := s.customers.SearchCustomers(s.ctx, cqrs.SearchCustomersQuery{Term: "doe"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("cus-john", found[0].ID)
	s.Equal(int64(3), found[0].AccountCount)

	found, err = s.customers.SearchCustomers(s.ctx, cqrs.SearchCustomersQuery{Term: "nobody"})
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *QuerySuite) TestGetCustomerDerivedFields() {
	s.seed()

	c, err := s.customers.GetCustomer(s.ctx, cqrs.GetCustomerQuery{CustomerID: "cus-john"})
	s.Require().NoError(err)
	s.Equal(int64(3), c.AccountCount)
	s.Equal("Emp employee1", c.CreatedByEmployeeName)

	_, err = s.customers.GetCustomer(s.ctx, cqrs.GetCustomerQuery{CustomerID: "cus-missing"})
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *QuerySuite) TestListCustomersWithAccounts() {
	s.seed()

	views, err := s.customers.ListCustomersWithAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	s.Equal("cus-jane", views[0].ID)
	s.NotNil(views[0].Accounts)
	s.Empty(views[0].Accounts)

	s.Equal("cus-john", views[1].ID)
	s.Len(views[1].Accounts, 3)
	s.Equal("acc-3", views[1].Accounts[0].ID)
	s.Equal("John Doe", views[1].Accounts[0].CustomerName)
}

func (s *QuerySuite) TestListCustomersByEmployee() {
	s.seed()

	views, err := s.customers.ListCustomers(s.ctx, cqrs.ListCustomersQuery{EmployeeID: "emp-admin"})
	s.Require().NoError(err)
	s.Empty(views)

	n, err := s.customers.CountCustomers(s.ctx, cqrs.CountCustomersQuery{EmployeeID: "emp-1"})
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

func (s *QuerySuite) TestEmployeeQueries() {
	s.seed()

	e, err := s.employees.GetEmployee(s.ctx, cqrs.GetEmployeeQuery{EmployeeID: "emp-1"})
	s.Require().NoError(err)
	s.Equal(int64(2), e.CustomerCount)

	e, err = s.employees.GetEmployeeByUsername(s.ctx, cqrs.GetEmployeeByUsernameQuery{Username: "admin"})
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, e.Role)

	admins, err := s.employees.ListEmployees(s.ctx, cqrs.ListEmployeesQuery{Role: models.RoleAdmin})
	s.Require().NoError(err)
	s.Len(admins, 1)

	n, err := s.employees.CountEmployees(s.ctx, cqrs.CountEmployeesQuery{Role: models.RoleEmployee})
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = s.employees.ListEmployees(s.ctx, cqrs.ListEmployeesQuery{Role: "BOSS"})
	s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
}

func (s *QuerySuite) TestAccountQueries() {
	s.seed()

	a, err := s.accounts.GetAccount(s.ctx, cqrs.GetAccountQuery{AccountID: "acc-1"})
	s.Require().NoError(err)
	s.Equal("Savings Account", a.AccountTypeDisplayName)
	s.Equal("Emp employee1", a.CreatedByEmployeeName)

	byNumber, err := s.accounts.GetAccountByNumber(s.ctx, cqrs.GetAccountByNumberQuery{AccountNumber: a.AccountNumber})
	s.Require().NoError(err)
	s.Equal("acc-1", byNumber.ID)

	closed, err := s.accounts.ListAccounts(s.ctx, cqrs.ListAccountsQuery{Status: models.AccountStatusClosed})
	s.Require().NoError(err)
	s.Len(closed, 1)

	savings, err := s.accounts.ListAccounts(s.ctx, cqrs.ListAccountsQuery{AccountType: models.AccountTypeSavings})
	s.Require().NoError(err)
	s.Len(savings, 2)

	byAdmin, err := s.accounts.ListAccounts(s.ctx, cqrs.ListAccountsQuery{EmployeeID: "emp-admin"})
	s.Require().NoError(err)
	s.Len(byAdmin, 1)

	_, err = s.accounts.GetAccount(s.ctx, cqrs.GetAccountQuery{AccountID: "acc-missing"})
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *QuerySuite) TestStats() {
	total, err := s.stats.TotalActiveBalance(s.ctx)
	s.Require().NoError(err)
	s.True(total.IsZero())

	s.seed()

	total, err = s.stats.TotalActiveBalance(s.ctx)
	s.Require().NoError(err)
	s.True(total.Equal(decimal.RequireFromString("150.00")), total.String())

	byType, err := s.stats.CountByType(s.ctx)
	s.Require().NoError(err)
	s.Len(byType, 6)
	s.Equal(int64(2), byType[models.AccountTypeSavings])
	s.Equal(int64(0), byType[models.AccountTypeCreditCard])

	byStatus, err := s.stats.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Len(byStatus, 4)
	s.Equal(int64(1), byStatus[models.AccountStatusClosed])

	n, err := s.stats.CountAccounts(s.ctx, cqrs.CountAccountsQuery{CustomerID: "cus-jane"})
	s.Require().NoError(err)
	s.Zero(n)

	summary, err := s.stats.Summary(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), summary.CustomerCount)
	s.Equal(int64(1), summary.EmployeeCount)
	s.Equal(int64(1), summary.AdminCount)
	s.Equal(int64(3), summary.AccountCount)
	s.True(summary.TotalActiveBalance.Equal(decimal.RequireFromString("150")))
}

func (s *QuerySuite) TestLoginAndRefresh() {
	hasher := utils.NewBcryptHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("s3cret")
	s.Require().NoError(err)
	now := s.tick()
	s.Require().NoError(s.store.Employees().Create(s.ctx, &models.Employee{
		ID: "emp-1", Username: "jdoe", PasswordHash: digest, FirstName: "J", LastName: "Doe",
		Email: "jdoe@bank.local", Role: models.RoleEmployee, CreatedAt: now, UpdatedAt: now,
	}))

	tokens := middleware.NewTokenManager("test-secret", time.Hour)
	auth := NewAuthQueryService(s.store, hasher, tokens)

	_, err = auth.Login(s.ctx, cqrs.LoginCommand{Username: "jdoe", Password: "wrong"})
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	_, err = auth.Login(s.ctx, cqrs.LoginCommand{Username: "ghost", Password: "s3cret"})
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	result, err := auth.Login(s.ctx, cqrs.LoginCommand{Username: "jdoe", Password: "s3cret"})
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
	s.Equal("emp-1", result.Employee.ID)

	claims, err := tokens.Parse(result.Token)
	s.Require().NoError(err)
	s.Equal(models.RoleEmployee, claims.Role)

	refreshed, err := auth.RefreshToken(s.ctx, cqrs.RefreshTokenCommand{Token: result.Token})
	s.Require().NoError(err)
	s.NotEmpty(refreshed.Token)

	_, err = auth.RefreshToken(s.ctx, cqrs.RefreshTokenCommand{Token: "garbage"})
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	s.Require().NoError(s.store.Employees().Delete(s.ctx, "emp-1"))
	_, err = auth.RefreshToken(s.ctx, cqrs.RefreshTokenCommand{Token: result.Token})
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}
