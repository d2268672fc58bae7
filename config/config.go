package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	LogLevel        string
	GinMode         string
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	ContentFile     string

	Admin      AdminConfig
	Analytics  AnalyticsConfig
	State      StateConfig
	ClickHouse ClickHouseConfig
}

type AdminConfig struct {
	Password     string
	PasswordHash string
	JWTSecret    string
	JWTTTL       time.Duration
}

type AnalyticsConfig struct {
	Timezone     string
	Location     *time.Location
	MaxBodyBytes int64
}

// StateConfig selects where aggregate counters survive restarts.
// DatabaseURL wins over File when both are set.
type StateConfig struct {
	DatabaseURL     string
	File            string
	FlushInterval   time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ClickHouseConfig struct {
	Host          string
	NativePort    int
	Database      string
	Username      string
	Password      string
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

func (c ClickHouseConfig) Enabled() bool {
	return c.Host != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		GinMode:         getEnv("GIN_MODE", ""),
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  splitList(getEnv("FE_ORIGIN", "http://localhost:3000")),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		MetricsEnabled:  getEnvAsBool("METRICS_ENABLED", true),
		ContentFile:     getEnv("CONTENT_FILE", "data/content.json"),
	}

	cfg.Admin = AdminConfig{
		Password:     os.Getenv("ADMIN_PASSWORD"),
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:    os.Getenv("JWT_SECRET_KEY"),
		JWTTTL:       getEnvAsDuration("JWT_TTL", 24*time.Hour),
	}

	cfg.Analytics = AnalyticsConfig{
		Timezone:     getEnv("ANALYTICS_TIMEZONE", "Local"),
		MaxBodyBytes: int64(getEnvAsInt("ANALYTICS_MAX_BODY_BYTES", 16<<10)),
	}

	cfg.State = StateConfig{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		File:            os.Getenv("STATE_FILE"),
		FlushInterval:   getEnvAsDuration("STATE_FLUSH_INTERVAL", 30*time.Second),
		MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	cfg.ClickHouse = ClickHouseConfig{
		Host:          os.Getenv("CLICKHOUSE_HOST"),
		NativePort:    getEnvAsInt("CLICKHOUSE_NATIVE_PORT", 9000),
		Database:      getEnv("CLICKHOUSE_DB_NAME", "default"),
		Username:      getEnv("CLICKHOUSE_USERNAME", "default"),
		Password:      os.Getenv("CLICKHOUSE_PASSWORD"),
		BufferSize:    getEnvAsInt("ARCHIVE_BUFFER", 1024),
		BatchSize:     getEnvAsInt("ARCHIVE_BATCH_SIZE", 200),
		FlushInterval: getEnvAsDuration("ARCHIVE_FLUSH_INTERVAL", 5*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.Admin.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Analytics.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("ANALYTICS_MAX_BODY_BYTES must be positive"))
	}
	if c.State.FlushInterval <= 0 {
		errs = append(errs, errors.New("STATE_FLUSH_INTERVAL must be positive"))
	}
	if c.ClickHouse.Enabled() {
		if c.ClickHouse.BufferSize <= 0 || c.ClickHouse.BatchSize <= 0 {
			errs = append(errs, errors.New("ARCHIVE_BUFFER and ARCHIVE_BATCH_SIZE must be positive"))
		}
		if c.ClickHouse.FlushInterval <= 0 {
			errs = append(errs, errors.New("ARCHIVE_FLUSH_INTERVAL must be positive"))
		}
	}

	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid ANALYTICS_TIMEZONE %q: %w", c.Analytics.Timezone, err))
	} else {
		c.Analytics.Location = loc
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
