package config

import (
	"os"
	"strconv"

	"head-hunter/internal/dialect"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	PackFormat    int
	DatabaseURL   string
	WorkerCount   int
	BatchSize     int
	LogLevel      string
	CostItem      string
	CostQty       int
	PurchaseLimit int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		PackFormat:    getEnvInt("HEAD_HUNTER_PACK_FORMAT", dialect.DefaultPackFormat),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/head_hunter?sslmode=disable"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
		BatchSize:     getEnvInt("BATCH_SIZE", 50),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CostItem:      getEnv("TRADE_COST_ITEM", "minecraft:emerald"),
		CostQty:       getEnvInt("TRADE_COST_QTY", 1),
		PurchaseLimit: getEnvInt("TRADE_PURCHASE_LIMIT", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-numeric setting")
		return fallback
	}
	return n
}
