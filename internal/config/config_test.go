package config

import (
	"testing"

	"head-hunter/internal/dialect"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HEAD_HUNTER_PACK_FORMAT", "DATABASE_URL", "WORKER_COUNT", "BATCH_SIZE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := fromEnv()
	if cfg.PackFormat != dialect.DefaultPackFormat {
		t.Errorf("PackFormat = %d, want %d", cfg.PackFormat, dialect.DefaultPackFormat)
	}
	if cfg.WorkerCount != 4 || cfg.BatchSize != 50 || cfg.LogLevel != "info" {
		t.Errorf("fromEnv() = %+v", cfg)
	}
	if cfg.CostItem != "minecraft:emerald" || cfg.CostQty != 1 || cfg.PurchaseLimit != 3 {
		t.Errorf("trade defaults = %q %d %d", cfg.CostItem, cfg.CostQty, cfg.PurchaseLimit)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HEAD_HUNTER_PACK_FORMAT", "10")
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := fromEnv()
	if cfg.PackFormat != 10 {
		t.Errorf("PackFormat = %d, want 10", cfg.PackFormat)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want fallback 4", cfg.WorkerCount)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}
