package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FE_ORIGIN", "")
	t.Setenv("ANALYTICS_TIMEZONE", "UTC")
	t.Setenv("CLICKHOUSE_HOST", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Analytics.Location != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Analytics.Location)
	}
	if cfg.Analytics.MaxBodyBytes != 16<<10 {
		t.Fatalf("unexpected max body: %d", cfg.Analytics.MaxBodyBytes)
	}
	if cfg.ClickHouse.Enabled() {
		t.Fatalf("clickhouse should be disabled without a host")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FE_ORIGIN", "https://kyureno.dev, http://localhost:3000 ,")
	t.Setenv("STATE_FLUSH_INTERVAL", "1m")
	t.Setenv("ANALYTICS_TIMEZONE", "Europe/Moscow")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://kyureno.dev" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.State.FlushInterval != time.Minute {
		t.Fatalf("unexpected flush interval: %v", cfg.State.FlushInterval)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("metrics should be disabled")
	}
	if cfg.Analytics.Location.String() != "Europe/Moscow" {
		t.Fatalf("unexpected location: %v", cfg.Analytics.Location)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("ANALYTICS_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown time zone")
	}

	cfg := &Config{
		Port:            "8080",
		ShutdownTimeout: time.Second,
		Admin:           AdminConfig{JWTTTL: time.Hour},
		Analytics:       AnalyticsConfig{Timezone: "UTC", MaxBodyBytes: 0},
		State:           StateConfig{FlushInterval: time.Second},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero body limit")
	}
}
