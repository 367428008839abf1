package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MonthlyRate.String() != "0.04" {
		t.Fatalf("expected default rate 0.04, got %s", cfg.MonthlyRate)
	}
	if cfg.LockPeriodDays != 90 {
		t.Fatalf("expected default lock period 90, got %d", cfg.LockPeriodDays)
	}
	if cfg.LockPeriod() != 90*24*time.Hour {
		t.Fatalf("unexpected lock period duration: %s", cfg.LockPeriod())
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address: %s", cfg.Address())
	}
}

func TestLoadDomainOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("MONTHLY_INTEREST_RATE", "0.025")
	t.Setenv("LOCK_PERIOD_DAYS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MonthlyRate.String() != "0.025" {
		t.Fatalf("expected rate 0.025, got %s", cfg.MonthlyRate)
	}
	if cfg.LockPeriodDays != 30 {
		t.Fatalf("expected lock period 30, got %d", cfg.LockPeriodDays)
	}
}

func TestLoadRejectsBadRate(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("MONTHLY_INTEREST_RATE", "four percent")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed rate")
	}
}

func TestLoadRequiresBackingStoresOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL missing in production")
	}
}
