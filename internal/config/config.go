package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the lock backend. An empty Address selects the in-process lock.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// EngineConfig holds the schedules and thresholds of the background jobs
type EngineConfig struct {
	PayrollCutoffDay    int
	LatenessThreshold   int
	ShiftExpiryDays     int
	EscalationInterval  time.Duration
	ShiftExpiryInterval time.Duration
	StaleOpenAge        time.Duration
	StaleOpenInterval   time.Duration
	JobTimeout          time.Duration
	SystemActorID       string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Driver:   getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	lockTTL, err := getEnvDuration("LOCK_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Address:  getEnv("REDIS_ADDRESS", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		LockTTL:  lockTTL,
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Engine configuration
	cutoffDay, err := getEnvInt("PAYROLL_CUTOFF_DAY", 25)
	if err != nil {
		return nil, err
	}
	threshold, err := getEnvInt("LATENESS_THRESHOLD", 3)
	if err != nil {
		return nil, err
	}
	expiryDays, err := getEnvInt("SHIFT_EXPIRY_DAYS", 7)
	if err != nil {
		return nil, err
	}
	escalationInterval, err := getEnvDuration("ESCALATION_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	expiryInterval, err := getEnvDuration("SHIFT_EXPIRY_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	staleOpenAge, err := getEnvDuration("STALE_OPEN_RECORD_AGE", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	staleOpenInterval, err := getEnvDuration("STALE_OPEN_SCAN_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	jobTimeout, err := getEnvDuration("JOB_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Engine = EngineConfig{
		PayrollCutoffDay:    cutoffDay,
		LatenessThreshold:   threshold,
		ShiftExpiryDays:     expiryDays,
		EscalationInterval:  escalationInterval,
		ShiftExpiryInterval: expiryInterval,
		StaleOpenAge:        staleOpenAge,
		StaleOpenInterval:   staleOpenInterval,
		JobTimeout:          jobTimeout,
		SystemActorID:       getEnv("SYSTEM_ACTOR_ID", "system"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Engine.PayrollCutoffDay < 1 || c.Engine.PayrollCutoffDay > 31 {
		return fmt.Errorf("PAYROLL_CUTOFF_DAY must be between 1 and 31")
	}
	if c.Engine.LatenessThreshold < 1 {
		return fmt.Errorf("LATENESS_THRESHOLD must be at least 1")
	}
	if c.Engine.ShiftExpiryDays < 0 {
		return fmt.Errorf("SHIFT_EXPIRY_DAYS must not be negative")
	}
	if c.Engine.EscalationInterval <= 0 || c.Engine.ShiftExpiryInterval <= 0 || c.Engine.StaleOpenInterval <= 0 {
		return fmt.Errorf("job intervals must be positive")
	}
	if c.Engine.StaleOpenAge <= 0 {
		return fmt.Errorf("STALE_OPEN_RECORD_AGE must be positive")
	}
	if c.Engine.JobTimeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive")
	}
	if c.Engine.SystemActorID == "" {
		return fmt.Errorf("SYSTEM_ACTOR_ID is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
