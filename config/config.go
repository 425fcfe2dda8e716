package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the loaded configuration.
type Config struct {
	Port           string
	Env            string
	BackendURL     string
	RedisURL       string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration

	SessionTTL       time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// Load reads configuration from the .env file and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("APP_ENV", "development"),
		BackendURL:       getEnv("BACKEND_URL", ""),
		RedisURL:         os.Getenv("REDIS_URL"),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RefreshTimeout:   getDuration("REFRESH_TIMEOUT", 5*time.Second),
		SessionTTL:       getDuration("SESSION_TTL", 30*time.Minute),
		LockoutThreshold: getInt("LOCKOUT_THRESHOLD", 3),
		LockoutDuration:  getDuration("LOCKOUT_DURATION", 30*time.Second),
	}
}

// Helper to get an environment variable or return a default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if fallback == "" {
		log.Fatalf("FATAL: Environment variable %s is not set.", key)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("FATAL: %s must be an integer, got %q", key, value)
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("FATAL: %s must be a duration, got %q", key, value)
	}
	return d
}
