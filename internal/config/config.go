package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported ledger store backends.
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
)

type Config struct {
	SupabaseURL   string
	SupabaseKey   string
	TelegramToken string

	DataBackend  string
	SQLiteDBPath string

	LogLevel  string
	LogFormat string
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DataBackend:   strings.ToLower(getEnv("DATA_BACKEND", BackendSupabase)),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/guardian.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
	}
	return cfg, nil
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_TOKEN is required")
	}

	switch c.DataBackend {
	case BackendSupabase:
		if c.SupabaseURL == "" {
			problems = append(problems, "SUPABASE_URL is required for the supabase backend")
		} else if !strings.HasPrefix(c.SupabaseURL, "https://") && !strings.HasPrefix(c.SupabaseURL, "http://") {
			problems = append(problems, fmt.Sprintf("invalid SUPABASE_URL '%s': must start with http:// or https://", c.SupabaseURL))
		}
		if c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_KEY is required for the supabase backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH is required for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendSupabase, BackendSQLite))
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be console or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
