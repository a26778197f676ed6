package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the environment-driven runtime configuration.
type Config struct {
	Addr string

	// StorageBackend selects the document store: memory, sqlite or postgres.
	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	// SessionBackend selects the session state store: memory or redis.
	SessionBackend string
	RedisURL       string

	// AuthMode is "jwt" (bearer tokens, requires JWTSecret) or "dev"
	// (X-Debug-Subject header, local workflows only).
	AuthMode   string
	JWTSecret  string
	DevSubject string
	TokenTTL   time.Duration
}

// Load reads configuration from the environment with local-dev defaults.
func Load() Config {
	return Config{
		Addr:           getenv("ADDR", ":8080"),
		StorageBackend: getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		SQLitePath:     getenv("SQLITE_PATH", "./data/organizer.db"),
		SessionBackend: getenv("SESSION_BACKEND", "memory"),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		AuthMode:       getenv("AUTH_MODE", "jwt"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		DevSubject:     getenv("DEV_SUBJECT", "dev|local"),
		TokenTTL:       time.Duration(getenvInt("TOKEN_TTL_SECONDS", 86400)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
