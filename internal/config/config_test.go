package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAX_RATE", "")
	cfg := Load()

	if cfg.Sales.TaxRate != 0.16 {
		t.Errorf("expected default tax rate 0.16, got %v", cfg.Sales.TaxRate)
	}
	if cfg.ReportCache.TTL != 5*time.Minute {
		t.Errorf("expected 5m report cache ttl, got %v", cfg.ReportCache.TTL)
	}
	if cfg.App.Timezone != "America/Mexico_City" {
		t.Errorf("unexpected timezone %q", cfg.App.Timezone)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TAX_RATE", "0.08")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()

	if cfg.Sales.TaxRate != 0.08 {
		t.Errorf("expected tax rate 0.08, got %v", cfg.Sales.TaxRate)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected driver memory, got %q", cfg.Database.Driver)
	}
	if cfg.ReportCache.TTL != time.Minute {
		t.Errorf("expected 1m ttl, got %v", cfg.ReportCache.TTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	app := AppConfig{Timezone: "Not/AZone"}
	if app.Location() != time.UTC {
		t.Error("expected UTC fallback")
	}
}
