package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	AppName         string        `yaml:"app_name"`
	AppEnv          string        `yaml:"app_env"`
	IsProduction    bool          `yaml:"-"`
	ProdOrigins     string        `yaml:"prod_origins"`
	HTTPAddr        string        `yaml:"http_addr"`
	DBDSN           string        `yaml:"db_dsn"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PaginationMode  string        `yaml:"pagination_mode"`

	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// RedisConfig is optional. An empty Address disables redis and the rate limiter
// falls back to an in-process one.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig limits requests per user id. Requests <= 0 disables limiting.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func defaults() *Config {
	return &Config{
		AppName:         "shareit",
		AppEnv:          "dev",
		HTTPAddr:        ":8080",
		ShutdownTimeout: 5 * time.Second,
		PaginationMode:  "legacy",
		Log:             LogConfig{Level: "info", Format: "json"},
		RateLimit:       RateLimitConfig{Requests: 0, Window: time.Minute},
	}
}

// Load loads configuration from .env (optional), an optional YAML file named by
// CONFIG_FILE, and environment variables. Environment variables win.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// Database DSN is required
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.IsProduction = cfg.AppEnv == PROD_STRING
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error

	cfg.AppName = getEnv("APP_NAME", cfg.AppName)
	// Application environment (default: dev)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", cfg.ProdOrigins)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.PaginationMode = getEnv("PAGINATION_MODE", cfg.PaginationMode)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Redis.Address = getEnv("REDIS_ADDR", cfg.Redis.Address)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.DB, err = getEnvAsInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	if cfg.RateLimit.Requests, err = getEnvAsInt("RATE_LIMIT_REQUESTS", cfg.RateLimit.Requests); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}
	if cfg.RateLimit.Window, err = getEnvAsDuration("RATE_LIMIT_WINDOW", cfg.RateLimit.Window); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses values like "15s" or "1m".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}
