package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Port string

	// DatabaseURL selects the PostgreSQL store. Empty runs on the in-memory store.
	DatabaseURL string

	// RedisAddr enables the entity cache and event streams when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RedisPoolSize     int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel   string
	BcryptCost int

	// LegacyZeroRateDefault treats an explicit zero interest rate on account
	// creation as "not supplied" and applies the type default.
	LegacyZeroRateDefault bool

	Seed Seed
}

// Seed holds the bootstrap credentials for an empty registry. Nothing is
// seeded unless Enabled is set and both passwords are present.
type Seed struct {
	Enabled          bool
	AdminUsername    string
	AdminPassword    string
	AdminEmail       string
	EmployeeUsername string
	EmployeePassword string
	EmployeeEmail    string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		CacheTTL:              getEnvDuration("CACHE_TTL", 0),
		RedisPoolSize:         getEnvInt("REDIS_POOL_SIZE", 10),
		RedisDialTimeout:      getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:      getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout:     getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		TokenTTL:              getEnvDuration("TOKEN_TTL", 24*time.Hour),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		BcryptCost:            getEnvInt("BCRYPT_COST", 0),
		LegacyZeroRateDefault: getEnvBool("LEGACY_ZERO_RATE_DEFAULT", true),
		Seed: Seed{
			Enabled:          getEnvBool("SEED_DEFAULT_EMPLOYEES", false),
			AdminUsername:    getEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminPassword:    os.Getenv("SEED_ADMIN_PASSWORD"),
			AdminEmail:       getEnv("SEED_ADMIN_EMAIL", "admin@bank.local"),
			EmployeeUsername: getEnv("SEED_EMPLOYEE_USERNAME", "employee1"),
			EmployeePassword: os.Getenv("SEED_EMPLOYEE_PASSWORD"),
			EmployeeEmail:    getEnv("SEED_EMPLOYEE_EMAIL", "employee1@bank.local"),
		},
	}
}

// Validate reports configuration that would leave the service unusable.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RedisPoolSize < 0 {
		errs = append(errs, errors.New("REDIS_POOL_SIZE must not be negative"))
	}
	if c.Seed.Enabled && (c.Seed.AdminPassword == "" || c.Seed.EmployeePassword == "") {
		errs = append(errs, errors.New("SEED_DEFAULT_EMPLOYEES requires SEED_ADMIN_PASSWORD and SEED_EMPLOYEE_PASSWORD"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
