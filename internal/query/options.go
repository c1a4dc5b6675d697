package query

import (
	"context"
	"log/slog"

	"github.com/krbank/backoffice/internal/metrics"
	"github.com/krbank/backoffice/internal/repository"
)

type deps struct {
	cache   *repository.ReadCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*deps)

func newDeps(opts []Option) deps {
	d := deps{logger: slog.Default()}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func WithReadCache(c *repository.ReadCache) Option {
	return func(d *deps) { d.cache = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *deps) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

// nameResolver memoises display names for the duration of one read.
type nameResolver struct {
	ctx       context.Context
	store     repository.Store
	cache     *repository.ReadCache
	employees map[string]string
	customers map[string]string
}

func newNameResolver(ctx context.Context, store repository.Store, cache *repository.ReadCache) *nameResolver {
	return &nameResolver{
		ctx:       ctx,
		store:     store,
		cache:     cache,
		employees: map[string]string{},
		customers: map[string]string{},
	}
}

// employee returns the full name, or "" when the employee no longer exists.
func (r *nameResolver) employee(id *string) string {
	if id == nil || *id == "" {
		return ""
	}
	if name, ok := r.employees[*id]; ok {
		return name
	}
	var name string
	if e, err := r.cache.Employee(r.ctx, r.store.Employees(), *id); err == nil {
		name = e.FullName()
	}
	r.employees[*id] = name
	return name
}

func (r *nameResolver) customer(id string) string {
	if name, ok := r.customers[id]; ok {
		return name
	}
	var name string
	if c, err := r.cache.Customer(r.ctx, r.store.Customers(), id); err == nil {
		name = c.FullName()
	}
	r.customers[id] = name
	return name
}
