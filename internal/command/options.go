package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/krbank/backoffice/internal/events"
	"github.com/krbank/backoffice/internal/metrics"
	"github.com/krbank/backoffice/internal/repository"
)

// Hasher is the credential hashing service.
type Hasher interface {
	Hash(secret string) (string, error)
}

type deps struct {
	publisher events.Publisher
	cache     *repository.ReadCache
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	legacyZeroRateDefault bool
}

func newDeps(opts []Option) deps {
	d := deps{
		publisher:             events.NopPublisher{},
		logger:                slog.Default(),
		now:                   func() time.Time { return time.Now().UTC() },
		legacyZeroRateDefault: true,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

type Option func(*deps)

func WithPublisher(p events.Publisher) Option {
	return func(d *deps) {
		if p != nil {
			d.publisher = p
		}
	}
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

// WithClock replaces the time source used for timestamps and account numbers.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithLegacyZeroRateDefault controls whether an explicit zero interest rate
// on account creation is replaced by the account type's default rate.
func WithLegacyZeroRateDefault(enabled bool) Option {
	return func(d *deps) { d.legacyZeroRateDefault = enabled }
}

// publish emits an event after commit. Failures are logged, never returned.
func (d deps) publish(ctx context.Context, stream, eventType string, data any) {
	if err := d.publisher.Publish(ctx, stream, eventType, data); err != nil {
		d.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
	}
}
