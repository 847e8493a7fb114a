package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the binaries need.
type Config struct {
	Port string `yaml:"port"` // HTTP port

	WorkbookPath string `yaml:"workbook_path"` // canonical xlsx file
	StockSheet   string `yaml:"stock_sheet"`
	LogSheet     string `yaml:"log_sheet"`

	ScanDebounce time.Duration `yaml:"scan_debounce"`

	DatabaseURL string `yaml:"database_url"` // optional audit mirror

	LogLevel string `yaml:"log_level"`
	GoEnv    string `yaml:"go_env"` // dev/prod
}

func Default() Config {
	return Config{
		Port:         "8080",
		WorkbookPath: "Updated_Stock_Data.xlsx",
		StockSheet:   "Stock",
		LogSheet:     "Log",
		ScanDebounce: 3 * time.Second,
		LogLevel:     "info",
		GoEnv:        "prod",
	}
}

// Load applies defaults, then the YAML file named by STOCK_CONFIG_FILE (if
// any), then environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STOCK_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.WorkbookPath, "WORKBOOK_PATH")
	setString(&c.StockSheet, "STOCK_SHEET")
	setString(&c.LogSheet, "LOG_SHEET")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.GoEnv, "GO_ENV")

	if v := os.Getenv("SCAN_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCAN_DEBOUNCE must be a duration: %w", err)
		}
		c.ScanDebounce = d
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be number: %w", err)
	}
	if strings.TrimSpace(c.WorkbookPath) == "" {
		return fmt.Errorf("WORKBOOK_PATH is required")
	}
	if strings.TrimSpace(c.StockSheet) == "" {
		return fmt.Errorf("STOCK_SHEET is required")
	}
	if strings.TrimSpace(c.LogSheet) == "" {
		return fmt.Errorf("LOG_SHEET is required")
	}
	if c.StockSheet == c.LogSheet {
		return fmt.Errorf("STOCK_SHEET and LOG_SHEET must differ")
	}
	if c.ScanDebounce <= 0 {
		return fmt.Errorf("SCAN_DEBOUNCE must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
