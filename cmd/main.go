package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/command"
	"github.com/krbank/backoffice/internal/config"
	"github.com/krbank/backoffice/internal/events"
	"github.com/krbank/backoffice/internal/handler"
	"github.com/krbank/backoffice/internal/metrics"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/query"
	redisClient "github.com/krbank/backoffice/internal/redis"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/seed"
	"github.com/krbank/backoffice/internal/utils"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.FromEnv()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// Write store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	hasher := utils.NewBcryptHasher(cfg.BcryptCost)
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Redis is optional: without it there is no entity cache and no event stream.
	var (
		cache     *repository.ReadCache
		publisher events.Publisher = events.NopPublisher{}
		redis     *redisClient.Client
	)
	if cfg.RedisAddr != "" {
		redis, err = redisClient.NewClient(ctx, redisClient.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			DialTimeout:  cfg.RedisDialTimeout,
			ReadTimeout:  cfg.RedisReadTimeout,
			WriteTimeout: cfg.RedisWriteTimeout,
		})
		if err != nil {
			return err
		}
		defer redis.Close()
		cache = repository.NewReadCache(redis.Client, cfg.CacheTTL)
		publisher = events.NewPublisher(redis.Client)
	}

	if _, err := seed.Bootstrap(ctx, store, hasher, cfg.Seed, logger); err != nil {
		return err
	}

	// --- CQRS wiring ---
	cmdOpts := []command.Option{
		command.WithPublisher(publisher),
		command.WithReadCache(cache),
		command.WithLogger(logger),
		command.WithMetrics(m),
		command.WithLegacyZeroRateDefault(cfg.LegacyZeroRateDefault),
	}
	qryOpts := []query.Option{
		query.WithReadCache(cache),
		query.WithLogger(logger),
		query.WithMetrics(m),
	}

	employeeCmds := command.NewEmployeeCommandService(store, hasher, cmdOpts...)
	customerCmds := command.NewCustomerCommandService(store, cmdOpts...)
	accountCmds := command.NewAccountCommandService(store, cmdOpts...)

	employeeQrys := query.NewEmployeeQueryService(store, qryOpts...)
	customerQrys := query.NewCustomerQueryService(store, qryOpts...)
	accountQrys := query.NewAccountQueryService(store, qryOpts...)
	statsQrys := query.NewStatsQueryService(store, qryOpts...)
	authQrys := query.NewAuthQueryService(store, hasher, tokens, qryOpts...)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(logger), middleware.MetricsMiddleware(m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(router, handler.Handlers{
		Auth:      handler.NewAuthHandler(authQrys),
		Employees: handler.NewEmployeeHandler(employeeCmds, employeeQrys),
		Customers: handler.NewCustomerHandler(customerCmds, customerQrys),
		Accounts:  handler.NewAccountHandler(accountCmds, accountQrys),
		Stats:     handler.NewStatsHandler(statsQrys),
	}, middleware.AuthMiddleware(tokens))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("backoffice starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if redis != nil {
		consumer, _ := os.Hostname()
		for _, stream := range events.Streams() {
			subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
				Group:    "backoffice-metrics",
				Consumer: "metrics-" + consumer,
				Stream:   stream,
				Handler:  m.HandleEvent,
				Logger:   logger,
			})
			g.Go(func() error {
				if err := subscriber.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
	}

	return g.Wait()
}

// openStore returns the PostgreSQL store when DATABASE_URL is set and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repository.NewPostgresStore(db), func() { db.Close() }, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
