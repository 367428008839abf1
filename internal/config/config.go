package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultAppName        = "FundVault"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultMonthlyRate    = "0.04"
	defaultLockPeriodDays = 90

	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@fundvault.local"

	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	monthlyRateEnvVar      = "MONTHLY_INTEREST_RATE"
	lockPeriodEnvVar       = "LOCK_PERIOD_DAYS"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// MonthlyRate is the simple-interest rate applied per 30-day month,
	// e.g. 0.04 for 4%.
	MonthlyRate decimal.Decimal
	// LockPeriodDays is how long an approved deposit stays locked before
	// withdrawal becomes available.
	LockPeriodDays int

	DefaultAdminUsername string
	DefaultAdminPassword string
	DefaultAdminEmail    string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:              getEnv("APP_NAME", defaultAppName),
		AppEnv:               getEnv("APP_ENV", defaultAppEnv),
		Port:                 getEnv("PORT", defaultPort),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		ShutdownPeriod:       defaultShutdownDelay,
		IdempotencyTTL:       defaultIdempotencyTTL,
		LockPeriodDays:       defaultLockPeriodDays,
		DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", defaultAdminUsername),
		DefaultAdminPassword: os.Getenv("DEFAULT_ADMIN_PASSWORD"),
		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", defaultAdminEmail),
	}

	rate, err := decimal.NewFromString(getEnv(monthlyRateEnvVar, defaultMonthlyRate))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", monthlyRateEnvVar, err)
	}
	if rate.IsNegative() {
		return Config{}, fmt.Errorf("%s must not be negative", monthlyRateEnvVar)
	}
	cfg.MonthlyRate = rate

	if v := os.Getenv(lockPeriodEnvVar); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", lockPeriodEnvVar, err)
		}
		if days <= 0 {
			return Config{}, fmt.Errorf("%s must be positive", lockPeriodEnvVar)
		}
		cfg.LockPeriodDays = days
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// LockPeriod returns the configured lock period as a duration.
func (c Config) LockPeriod() time.Duration {
	return time.Duration(c.LockPeriodDays) * 24 * time.Hour
}

// IsDev reports whether the app runs in a development environment, where
// in-memory fallbacks for Postgres and Redis are acceptable.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
