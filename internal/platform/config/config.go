package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr             string
	Environment      string
	DatabaseURL      string
	RunMigrations    bool
	MigrationsDir    string
	CatalogFile      string
	GLRulesFile      string
	MaxBodyBytes     int64
	BatchConcurrency int
	LogLevel         string
	MetricsEnabled   bool
	JobQueueSize     int
	ShutdownTimeout  time.Duration
	// RateLimitPerMinute caps requests per client IP; zero disables the limiter.
	RateLimitPerMinute int
	// TreatUnknownAsTaxable keeps perceptions with codes missing from the catalog
	// as fully taxable instead of failing the employee.
	TreatUnknownAsTaxable bool
}

func Load() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		Environment:           getEnv("APP_ENV", "development"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		CatalogFile:           getEnv("CATALOG_FILE", ""),
		GLRulesFile:           getEnv("GL_RULES_FILE", ""),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		BatchConcurrency:      getEnvInt("BATCH_CONCURRENCY", 8),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		JobQueueSize:          getEnvInt("JOB_QUEUE_SIZE", 128),
		ShutdownTimeout:       getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
		TreatUnknownAsTaxable: getEnvBool("TREAT_UNKNOWN_AS_TAXABLE", false),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" && strings.TrimSpace(c.CatalogFile) == "" {
		return fmt.Errorf("DATABASE_URL or CATALOG_FILE is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive")
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.Environment == "production" && c.TreatUnknownAsTaxable {
		return fmt.Errorf("TREAT_UNKNOWN_AS_TAXABLE must be disabled in production")
	}
	return nil
}
