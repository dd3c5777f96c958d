// Package config provides runtime configuration values for the storefront.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, sessions, the
// catalog source and the chat assistant.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	JWTSecret            string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	CatalogDatabaseURL string
	CatalogTable       string

	GeminiAPIKey     string
	GeminiModel      string
	ChatTimeout      time.Duration
	ChatHistoryLimit int

	RolloutKey string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func durenvm(key string, defMin int) time.Duration {
	return time.Duration(atoienv(key, defMin)) * time.Minute
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:      durenvs("SHUTDOWN_TIMEOUT", 15),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionTTL:           durenvm("SESSION_TTL", 120),
		SessionSweepInterval: durenvs("SESSION_SWEEP_INTERVAL", 60),
		CatalogDatabaseURL:   os.Getenv("CATALOG_DATABASE_URL"),
		CatalogTable:         getenv("CATALOG_TABLE", "catalog.products"),
		GeminiAPIKey:         getenv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:          getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		ChatTimeout:          durenvs("CHAT_TIMEOUT", 20),
		ChatHistoryLimit:     atoienv("CHAT_HISTORY_LIMIT", 20),
		RolloutKey:           os.Getenv("ROLLOUT_KEY"),
	}
}
