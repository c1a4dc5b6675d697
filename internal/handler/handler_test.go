package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/query"
	"github.com/shopspring/decimal"
)

var errNotConfigured = fmt.Errorf("not configured")

// ---- mock implementations ----

type mockEmployeeCommander struct {
	createFn func(cqrs.CreateEmployeeCommand) (*models.EmployeeView, error)
	updateFn func(cqrs.UpdateEmployeeCommand) (*models.EmployeeView, error)
	deleteFn func(cqrs.DeleteEmployeeCommand) error
}

func (m *mockEmployeeCommander) CreateEmployee(_ context.Context, cmd cqrs.CreateEmployeeCommand) (*models.EmployeeView, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockEmployeeCommander) UpdateEmployee(_ context.Context, cmd cqrs.UpdateEmployeeCommand) (*models.EmployeeView, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockEmployeeCommander) DeleteEmployee(_ context.Context, cmd cqrs.DeleteEmployeeCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return errNotConfigured
}

type mockEmployeeQuerier struct {
	getFn        func(cqrs.GetEmployeeQuery) (*models.EmployeeView, error)
	byUsernameFn func(cqrs.GetEmployeeByUsernameQuery) (*models.EmployeeView, error)
	listFn       func(cqrs.ListEmployeesQuery) ([]models.EmployeeView, error)
	countFn      func(cqrs.CountEmployeesQuery) (int64, error)
}

func (m *mockEmployeeQuerier) GetEmployee(_ context.Context, q cqrs.GetEmployeeQuery) (*models.EmployeeView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockEmployeeQuerier) GetEmployeeByUsername(_ context.Context, q cqrs.GetEmployeeByUsernameQuery) (*models.EmployeeView, error) {
	if m.byUsernameFn != nil {
		return m.byUsernameFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockEmployeeQuerier) ListEmployees(_ context.Context, q cqrs.ListEmployeesQuery) ([]models.EmployeeView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockEmployeeQuerier) CountEmployees(_ context.Context, q cqrs.CountEmployeesQuery) (int64, error) {
	if m.countFn != nil {
		return m.countFn(q)
	}
	return 0, errNotConfigured
}

type mockCustomerCommander struct {
	createFn func(cqrs.CreateCustomerCommand) (*models.CustomerView, error)
	updateFn func(cqrs.UpdateCustomerCommand) (*models.CustomerView, error)
	deleteFn func(cqrs.DeleteCustomerCommand) error
}

func (m *mockCustomerCommander) CreateCustomer(_ context.Context, cmd cqrs.CreateCustomerCommand) (*models.CustomerView, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockCustomerCommander) UpdateCustomer(_ context.Context, cmd cqrs.UpdateCustomerCommand) (*models.CustomerView, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockCustomerCommander) DeleteCustomer(_ context.Context, cmd cqrs.DeleteCustomerCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return errNotConfigured
}

type mockCustomerQuerier struct {
	getFn          func(cqrs.GetCustomerQuery) (*models.CustomerView, error)
	listFn         func(cqrs.ListCustomersQuery) ([]models.CustomerView, error)
	withAccountsFn func() ([]models.CustomerView, error)
	searchFn       func(cqrs.SearchCustomersQuery) ([]models.CustomerView, error)
	countFn        func(cqrs.CountCustomersQuery) (int64, error)
}

func (m *mockCustomerQuerier) GetCustomer(_ context.Context, q cqrs.GetCustomerQuery) (*models.CustomerView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockCustomerQuerier) ListCustomers(_ context.Context, q cqrs.ListCustomersQuery) ([]models.CustomerView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockCustomerQuerier) ListCustomersWithAccounts(context.Context) ([]models.CustomerView, error) {
	if m.withAccountsFn != nil {
		return m.withAccountsFn()
	}
	return nil, errNotConfigured
}
func (m *mockCustomerQuerier) SearchCustomers(_ context.Context, q cqrs.SearchCustomersQuery) ([]models.CustomerView, error) {
	if m.searchFn != nil {
		return m.searchFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockCustomerQuerier) CountCustomers(_ context.Context, q cqrs.CountCustomersQuery) (int64, error) {
	if m.countFn != nil {
		return m.countFn(q)
	}
	return 0, errNotConfigured
}

type mockAccountCommander struct {
	createFn  func(cqrs.CreateAccountCommand) (*models.AccountView, error)
	statusFn  func(cqrs.UpdateAccountStatusCommand) (*models.AccountView, error)
	balanceFn func(cqrs.UpdateAccountBalanceCommand) (*models.AccountView, error)
	deleteFn  func(cqrs.DeleteAccountCommand) error
}

func (m *mockAccountCommander) CreateAccount(_ context.Context, cmd cqrs.CreateAccountCommand) (*models.AccountView, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockAccountCommander) UpdateAccountStatus(_ context.Context, cmd cqrs.UpdateAccountStatusCommand) (*models.AccountView, error) {
	if m.statusFn != nil {
		return m.statusFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockAccountCommander) UpdateAccountBalance(_ context.Context, cmd cqrs.UpdateAccountBalanceCommand) (*models.AccountView, error) {
	if m.balanceFn != nil {
		return m.balanceFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockAccountCommander) DeleteAccount(_ context.Context, cmd cqrs.DeleteAccountCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return errNotConfigured
}

type mockAccountQuerier struct {
	getFn      func(cqrs.GetAccountQuery) (*models.AccountView, error)
	byNumberFn func(cqrs.GetAccountByNumberQuery) (*models.AccountView, error)
	listFn     func(cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

func (m *mockAccountQuerier) GetAccount(_ context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockAccountQuerier) GetAccountByNumber(_ context.Context, q cqrs.GetAccountByNumberQuery) (*models.AccountView, error) {
	if m.byNumberFn != nil {
		return m.byNumberFn(q)
	}
	return nil, errNotConfigured
}
func (m *mockAccountQuerier) ListAccounts(_ context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, errNotConfigured
}

type mockAuthenticator struct {
	loginFn   func(cqrs.LoginCommand) (*query.AuthResult, error)
	refreshFn func(cqrs.RefreshTokenCommand) (*query.AuthResult, error)
}

func (m *mockAuthenticator) Login(_ context.Context, cmd cqrs.LoginCommand) (*query.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return nil, errNotConfigured
}
func (m *mockAuthenticator) RefreshToken(_ context.Context, cmd cqrs.RefreshTokenCommand) (*query.AuthResult, error) {
	if m.refreshFn != nil {
		return m.refreshFn(cmd)
	}
	return nil, errNotConfigured
}

type mockStatsQuerier struct {
	countFn    func(cqrs.CountAccountsQuery) (int64, error)
	totalFn    func() (decimal.Decimal, error)
	byTypeFn   func() (map[models.AccountType]int64, error)
	byStatusFn func() (map[models.AccountStatus]int64, error)
	summaryFn  func() (*models.DashboardSummary, error)
}

func (m *mockStatsQuerier) CountAccounts(_ context.Context, q cqrs.CountAccountsQuery) (int64, error) {
	if m.countFn != nil {
		return m.countFn(q)
	}
	return 0, errNotConfigured
}
func (m *mockStatsQuerier) TotalActiveBalance(context.Context) (decimal.Decimal, error) {
	if m.totalFn != nil {
		return m.totalFn()
	}
	return decimal.Zero, errNotConfigured
}
func (m *mockStatsQuerier) CountByType(context.Context) (map[models.AccountType]int64, error) {
	if m.byTypeFn != nil {
		return m.byTypeFn()
	}
	return nil, errNotConfigured
}
func (m *mockStatsQuerier) CountByStatus(context.Context) (map[models.AccountStatus]int64, error) {
	if m.byStatusFn != nil {
		return m.byStatusFn()
	}
	return nil, errNotConfigured
}
func (m *mockStatsQuerier) Summary(context.Context) (*models.DashboardSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn()
	}
	return nil, errNotConfigured
}

// ---- helpers ----

type mocks struct {
	auth         *mockAuthenticator
	employeeCmds *mockEmployeeCommander
	employeeQrys *mockEmployeeQuerier
	customerCmds *mockCustomerCommander
	customerQrys *mockCustomerQuerier
	accountCmds  *mockAccountCommander
	accountQrys  *mockAccountQuerier
	stats        *mockStatsQuerier
}

func newMocks() *mocks {
	return &mocks{
		auth:         &mockAuthenticator{},
		employeeCmds: &mockEmployeeCommander{},
		employeeQrys: &mockEmployeeQuerier{},
		customerCmds: &mockCustomerCommander{},
		customerQrys: &mockCustomerQuerier{},
		accountCmds:  &mockAccountCommander{},
		accountQrys:  &mockAccountQuerier{},
		stats:        &mockStatsQuerier{},
	}
}

func fakeAuth(employeeID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("employeeId", employeeID)
		c.Set("role", string(role))
		c.Next()
	}
}

func newTestRouter(m *mocks, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Handlers{
		Auth:      NewAuthHandler(m.auth),
		Employees: NewEmployeeHandler(m.employeeCmds, m.employeeQrys),
		Customers: NewCustomerHandler(m.customerCmds, m.customerQrys),
		Accounts:  NewAccountHandler(m.accountCmds, m.accountQrys),
		Stats:     NewStatsHandler(m.stats),
	}, fakeAuth("emp-001", role))
	return r
}

func doRequest(router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var (
	testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	testEmployeeView = &models.EmployeeView{
		Employee: models.Employee{
			ID: "emp-001", Username: "jdoe", FirstName: "Jane", LastName: "Doe",
			Email: "jdoe@bank.local", Role: models.RoleEmployee, CreatedAt: testNow, UpdatedAt: testNow,
		},
	}

	testCustomerView = &models.CustomerView{
		Customer: models.Customer{
			ID: "cus-001", FirstName: "John", LastName: "Doe", Email: "john@example.com",
			PhoneNumber: "+15551234567", SSN: "123-45-6789", CreatedByEmployeeID: "emp-001",
			CreatedAt: testNow, UpdatedAt: testNow,
		},
		CreatedByEmployeeName: "Jane Doe",
	}

	testAccountView = &models.AccountView{
		Account: models.Account{
			ID: "acc-001", AccountNumber: "SAV1709294400000", AccountType: models.AccountTypeSavings,
			Balance: decimal.RequireFromString("100.00"), InterestRate: decimal.RequireFromString("2.50"),
			Status: models.AccountStatusActive, CustomerID: "cus-001", CreatedAt: testNow, UpdatedAt: testNow,
		},
		AccountTypeDisplayName: "Savings Account",
		CustomerName:           "John Doe",
	}
)
