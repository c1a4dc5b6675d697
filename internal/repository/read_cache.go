package repository

import (
	"context"
	"time"

	"github.com/krbank/backoffice/internal/models"
	sharedredis "github.com/krbank/backoffice/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	employeeKeyPrefix = "employee:record:"
	customerKeyPrefix = "customer:record:"
	accountKeyPrefix  = "account:record:"
)

// ReadCache keeps raw entity records in Redis in front of the store. It never
// holds derived counts, and commands invalidate an entry on every write to it.
// The cached employee record carries no password digest, so credential checks
// must read the store directly. A nil *ReadCache reads straight through.
type ReadCache struct {
	employees *sharedredis.ViewCache[models.Employee]
	customers *sharedredis.ViewCache[models.Customer]
	accounts  *sharedredis.ViewCache[models.Account]
}

func NewReadCache(client *goredis.Client, ttl time.Duration) *ReadCache {
	if client == nil {
		return nil
	}
	return &ReadCache{
		employees: sharedredis.NewViewCache[models.Employee](client, employeeKeyPrefix, ttl),
		customers: sharedredis.NewViewCache[models.Customer](client, customerKeyPrefix, ttl),
		accounts:  sharedredis.NewViewCache[models.Account](client, accountKeyPrefix, ttl),
	}
}

// Employee returns the employee record, trying Redis first then the store and
// warming the cache on a cold read.
func (c *ReadCache) Employee(ctx context.Context, repo EmployeeRepository, id string) (*models.Employee, error) {
	if c != nil {
		if e, ok := c.employees.Get(ctx, id); ok {
			return e, nil
		}
	}
	e, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c != nil {
		c.employees.Set(ctx, id, e)
	}
	return e, nil
}

func (c *ReadCache) Customer(ctx context.Context, repo CustomerRepository, id string) (*models.Customer, error) {
	if c != nil {
		if cu, ok := c.customers.Get(ctx, id); ok {
			return cu, nil
		}
	}
	cu, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c != nil {
		c.customers.Set(ctx, id, cu)
	}
	return cu, nil
}

func (c *ReadCache) Account(ctx context.Context, repo AccountRepository, id string) (*models.Account, error) {
	if c != nil {
		if a, ok := c.accounts.Get(ctx, id); ok {
			return a, nil
		}
	}
	a, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c != nil {
		c.accounts.Set(ctx, id, a)
	}
	return a, nil
}

func (c *ReadCache) InvalidateEmployee(ctx context.Context, id string) {
	if c != nil {
		c.employees.Delete(ctx, id)
	}
}

func (c *ReadCache) InvalidateCustomer(ctx context.Context, id string) {
	if c != nil {
		c.customers.Delete(ctx, id)
	}
}

func (c *ReadCache) InvalidateAccount(ctx context.Context, id string) {
	if c != nil {
		c.accounts.Delete(ctx, id)
	}
}
