package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// JWT Configuration
	JWT JWTConfig

	// Worker Configuration
	Worker WorkerConfig

	// Logging Configuration
	Logging LoggingConfig

	// CategorySeedFile is an optional YAML file with product categories
	// loaded into the catalog at server start
	CategorySeedFile string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	// ProfileBackfillSchedule is a cron expression for the producer profile
	// backfill pass, empty disables it
	ProfileBackfillSchedule string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// Database URL - default to a local sqlite file, allow override for dev
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "organico.sqlite"
	}

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Token lifetimes in minutes, defaults match the original API contract
	accessTTL := durationMinutes("ACCESS_TOKEN_MINUTES", 5)
	refreshTTL := durationMinutes("REFRESH_TOKEN_MINUTES", 24*60)

	backfillSchedule := os.Getenv("PROFILE_BACKFILL_SCHEDULE")
	if backfillSchedule == "" {
		backfillSchedule = "0 * * * *"
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Worker: WorkerConfig{
			ProfileBackfillSchedule: backfillSchedule,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		CategorySeedFile: os.Getenv("CATEGORY_SEED_FILE"),
	}, nil
}

func durationMinutes(key string, fallback int) time.Duration {
	minutes := fallback
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			minutes = parsed
		}
	}
	return time.Duration(minutes) * time.Minute
}
