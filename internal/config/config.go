// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/aristath/portfolio-analytics/internal/clients/alphavantage"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Directory holding the SQLite database (always absolute)
	DatabaseURL string // PostgreSQL DSN; when set, documents are stored there instead of SQLite
	Port        int
	DevMode     bool
	LogLevel    string
	LogPretty   bool

	AlphaVantageAPIKey     string
	AlphaVantageBaseURL    string
	AlphaVantageDailyLimit int

	SyncSchedule string
	SyncTimeout  time.Duration
	Timezone     string
	Location     *time.Location

	VolatilityWindowOrder string
	WindowOrder           statistics.WindowOrder

	ConfigFile  string
	CORSOrigins []string
	Watchlist   []string
}

// FileConfig is the optional YAML file named by CONFIG_FILE
type FileConfig struct {
	CORSOrigins []string `yaml:"cors_origins"`
	Watchlist   []string `yaml:"watchlist"`
}

// Load reads configuration from .env, the environment and the optional YAML file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:     dataDir,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnvAsInt("PORT", 8080),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", true),

		AlphaVantageAPIKey:     getEnv("ALPHAVANTAGE_API_KEY", ""),
		AlphaVantageBaseURL:    getEnv("ALPHAVANTAGE_BASE_URL", alphavantage.DefaultBaseURL),
		AlphaVantageDailyLimit: getEnvAsInt("ALPHAVANTAGE_DAILY_LIMIT", alphavantage.DefaultDailyLimit),

		SyncSchedule: getEnv("SYNC_SCHEDULE", "0 30 22 * * MON-FRI"),
		SyncTimeout:  getEnvAsDuration("SYNC_TIMEOUT", 10*time.Minute),
		Timezone:     getEnv("TIMEZONE", "UTC"),

		VolatilityWindowOrder: getEnv("VOLATILITY_WINDOW_ORDER", "lexicographic"),
		ConfigFile:            getEnv("CONFIG_FILE", ""),
	}

	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.CORSOrigins = file.CORSOrigins
		cfg.Watchlist = file.Watchlist
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// LoadFile reads the YAML config file. Symbols in the watchlist are upper-cased
// and de-duplicated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Watchlist))
	watchlist := make([]string, 0, len(file.Watchlist))
	for _, symbol := range file.Watchlist {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		watchlist = append(watchlist, symbol)
	}
	file.Watchlist = watchlist

	return &file, nil
}

// Validate checks the configuration and resolves derived fields
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.AlphaVantageDailyLimit < 0 {
		return fmt.Errorf("invalid ALPHAVANTAGE_DAILY_LIMIT %d", c.AlphaVantageDailyLimit)
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("invalid SYNC_TIMEOUT %s", c.SyncTimeout)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.SyncSchedule); err != nil {
		return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", c.SyncSchedule, err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	order, err := statistics.ParseWindowOrder(c.VolatilityWindowOrder)
	if err != nil {
		return fmt.Errorf("invalid VOLATILITY_WINDOW_ORDER: %w", err)
	}
	c.WindowOrder = order

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
