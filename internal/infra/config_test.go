package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rewards")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.VestingWindowDays != 30 {
		t.Fatalf("VestingWindowDays = %d, want 30", cfg.VestingWindowDays)
	}
	if cfg.DefaultRewardBps != 500 {
		t.Fatalf("DefaultRewardBps = %d, want 500", cfg.DefaultRewardBps)
	}
	if cfg.SweepInterval != time.Hour {
		t.Fatalf("SweepInterval = %v, want 1h", cfg.SweepInterval)
	}
	if cfg.DefaultLocale != "en" {
		t.Fatalf("DefaultLocale = %q, want en", cfg.DefaultLocale)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rewards")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("VESTING_WINDOW_DAYS", "14")
	t.Setenv("DEFAULT_REWARD_BPS", "750")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "production" {
		t.Fatalf("AppEnv = %q, want production", cfg.AppEnv)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.VestingWindowDays != 14 {
		t.Fatalf("VestingWindowDays = %d, want 14", cfg.VestingWindowDays)
	}
	if cfg.DefaultRewardBps != 750 {
		t.Fatalf("DefaultRewardBps = %d, want 750", cfg.DefaultRewardBps)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("CORSAllowedOrigins = %v, want two trimmed origins", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig succeeded without DATABASE_URL")
	}
}

func TestLoadConfigRejectsNonPositiveWindow(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rewards")
	t.Setenv("VESTING_WINDOW_DAYS", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted a zero vesting window")
	}
}
