//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/sentinel"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	store     *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.db, err = sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(Migrate(s.ctx, s.db))
	s.store = NewPostgresStore(s.db)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE accounts, customers, employees`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedEmployee(id, username string) {
	now := time.Now().UTC()
	s.Require().NoError(s.store.Employees().Create(s.ctx, &models.Employee{
		ID: id, Username: username, PasswordHash: "digest", FirstName: "E", LastName: id,
		Email: username + "@bank.local", Role: models.RoleEmployee, CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *PostgresStoreSuite) seedCustomer(id, email, ssn, employeeID string) {
	now := time.Now().UTC()
	s.Require().NoError(s.store.Customers().Create(s.ctx, &models.Customer{
		ID: id, FirstName: "John", LastName: "Doe", Email: email, PhoneNumber: "+15551234567",
		SSN: ssn, CreatedByEmployeeID: employeeID, CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *PostgresStoreSuite) newAccount(id, number, status, balance string) *models.Account {
	now := time.Now().UTC()
	return &models.Account{
		ID: id, AccountNumber: number, AccountType: models.AccountTypeSavings,
		Balance: decimal.RequireFromString(balance), InterestRate: decimal.RequireFromString("2.50"),
		Status: models.AccountStatus(status), CustomerID: "cus-1", CreatedAt: now, UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestUniqueViolationsMapToConflict() {
	s.seedEmployee("emp-1", "jdoe")
	s.seedCustomer("cus-1", "john@example.com", "123-45-6789", "emp-1")

	now := time.Now().UTC()
	err := s.store.Customers().Create(s.ctx, &models.Customer{
		ID: "cus-2", FirstName: "J", LastName: "D", Email: "other@example.com", PhoneNumber: "+15551234567",
		SSN: "123-45-6789", CreatedByEmployeeID: "emp-1", CreatedAt: now, UpdatedAt: now,
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestForeignKeysMapToDependency() {
	s.seedEmployee("emp-1", "jdoe")
	s.seedCustomer("cus-1", "john@example.com", "123-45-6789", "emp-1")
	s.Require().NoError(s.store.Accounts().Create(s.ctx, s.newAccount("acc-1", "SAV1", "ACTIVE", "0")))

	s.ErrorIs(s.store.Customers().Delete(s.ctx, "cus-1"), sentinel.ErrDependency)
	s.ErrorIs(s.store.Employees().Delete(s.ctx, "emp-1"), sentinel.ErrDependency)
}

func (s *PostgresStoreSuite) TestConcurrentDuplicateAccountNumber() {
	s.seedEmployee("emp-1", "jdoe")
	s.seedCustomer("cus-1", "john@example.com", "123-45-6789", "emp-1")

	var wg sync.WaitGroup
	var conflicts, successes atomic.Int32
	for _, id := range []string{"acc-1", "acc-2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.store.RunInTx(s.ctx, func(tx Tx) error {
				if _, err := tx.Customers().GetForShare(s.ctx, "cus-1"); err != nil {
					return err
				}
				return tx.Accounts().Create(s.ctx, s.newAccount(id, "SAV00123456", "ACTIVE", "0"))
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}(id)
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestAggregatesAndSearch() {
	s.seedEmployee("emp-1", "jdoe")
	s.seedCustomer("cus-1", "john@example.com", "123-45-6789", "emp-1")

	sum, err := s.store.Accounts().SumBalanceByStatus(s.ctx, models.AccountStatusActive)
	s.Require().NoError(err)
	s.True(sum.IsZero())

	s.Require().NoError(s.store.Accounts().Create(s.ctx, s.newAccount("acc-1", "SAV1", "ACTIVE", "100.00")))
	s.Require().NoError(s.store.Accounts().Create(s.ctx, s.newAccount("acc-2", "SAV2", "ACTIVE", "50.00")))
	s.Require().NoError(s.store.Accounts().Create(s.ctx, s.newAccount("acc-3", "SAV3", "CLOSED", "9999.00")))

	sum, err = s.store.Accounts().SumBalanceByStatus(s.ctx, models.AccountStatusActive)
	s.Require().NoError(err)
	s.True(sum.Equal(decimal.RequireFromString("150.00")), sum.String())

	byType, err := s.store.Accounts().CountByType(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), byType[models.AccountTypeSavings])

	found, err := s.store.Customers().Search(s.ctx, "DOE")
	s.Require().NoError(err)
	s.Len(found, 1)

	found, err = s.store.Customers().Search(s.ctx, "%")
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	s.seedEmployee("emp-1", "jdoe")
	boom := errors.New("boom")
	err := s.store.RunInTx(s.ctx, func(tx Tx) error {
		now := time.Now().UTC()
		if err := tx.Customers().Create(s.ctx, &models.Customer{
			ID: "cus-9", FirstName: "A", LastName: "B", Email: "a@b.com", PhoneNumber: "+15551234567",
			SSN: "111-22-3333", CreatedByEmployeeID: "emp-1", CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Customers().GetByID(s.ctx, "cus-9")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
