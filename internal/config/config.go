// Package config loads runtime configuration from CLI flags, .env files and
// the environment, plus the operator's device inventory.
package config

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CLIOptions holds command-line argument overrides
type CLIOptions struct {
	Date        string // -date: report date override (yyyy-mm-dd)
	Inventory   string // -inventory: inventory file override
	Stdout      bool   // -stdout: print the report instead of sending it
	Once        bool   // -once: run a single report even when SCHEDULE is set
	ShowHelp    bool   // -help: show usage
	ShowVersion bool   // -version: show version
}

// ParseCLI parses command-line arguments and returns CLIOptions
func ParseCLI() *CLIOptions {
	opts := &CLIOptions{}

	flag.StringVar(&opts.Date, "date", "", "Report date as yyyy-mm-dd (overrides REPORT_DAYS_BEFORE)")
	flag.StringVar(&opts.Inventory, "inventory", "", "Path to the inventory file (overrides config)")
	flag.BoolVar(&opts.Stdout, "stdout", false, "Print the report to stdout instead of delivering it")
	flag.BoolVar(&opts.Once, "once", false, "Run a single report even when SCHEDULE is configured")
	flag.BoolVar(&opts.ShowHelp, "help", false, "Show usage information")
	flag.BoolVar(&opts.ShowVersion, "version", false, "Show version information")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Net Syslog Reporter - per-device syslog anomaly reports\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nExamples:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s -date 2026-08-30 -stdout\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s -inventory ./inventory.yml -once\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment variables can be set in .env file or exported directly.\n")
		_, _ = fmt.Fprintf(os.Stderr, "CLI arguments override environment variables.\n")
	}

	flag.Parse()

	return opts
}

// Config holds all application configuration
type Config struct {
	// Inventory and log collection
	InventoryPath string
	LogPath       string // directory the collector writes per-device files to

	// Novelty detection
	HistoryDBPath       string
	StalenessWindowDays int
	ExceptionsPath      string // optional; empty suppresses nothing

	// Report
	ReportDaysBefore int // how many days before today the report covers

	// Delivery
	Notify           string // "smtp", "telegram" or "stdout"
	SMTPServer       string // host:port
	SMTPFrom         string
	SMTPTo           string // comma-separated recipients
	TelegramBotToken string
	TelegramChannel  int64

	// Application
	LogLevel string
	Schedule string // optional cron expression for daemon mode
}

// Load loads configuration from .env file and environment variables.
// For CLI overrides, use LoadWithCLI instead.
func Load() (*Config, error) {
	return LoadWithCLI(nil)
}

// LoadWithCLI loads configuration with CLI argument overrides.
// Priority: CLI args > .env file > OS environment variables > defaults.
func LoadWithCLI(cli *CLIOptions) (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// godotenv.Load() sets OS env vars from .env, which viper then reads
	_ = godotenv.Load()

	setDefaults()

	config := &Config{
		InventoryPath: viper.GetString("INVENTORY"),
		LogPath:       viper.GetString("LOG_PATH"),

		HistoryDBPath:       viper.GetString("HISTORY_DB_PATH"),
		StalenessWindowDays: viper.GetInt("STALENESS_WINDOW_DAYS"),
		ExceptionsPath:      viper.GetString("EXCEPTIONS_PATH"),

		ReportDaysBefore: viper.GetInt("REPORT_DAYS_BEFORE"),

		Notify:           viper.GetString("NOTIFY"),
		SMTPServer:       viper.GetString("SMTP_SERVER"),
		SMTPFrom:         viper.GetString("SMTP_FROM"),
		SMTPTo:           viper.GetString("SMTP_TO"),
		TelegramBotToken: viper.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChannel:  viper.GetInt64("TELEGRAM_CHANNEL_ID"),

		LogLevel: viper.GetString("LOG_LEVEL"),
		Schedule: viper.GetString("SCHEDULE"),
	}

	// Apply CLI overrides (highest priority)
	if cli != nil {
		if cli.Inventory != "" {
			config.InventoryPath = cli.Inventory
		}
		if cli.Stdout {
			config.Notify = "stdout"
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("INVENTORY", "./inventory.yml")
	viper.SetDefault("LOG_PATH", "./logs/devices")
	viper.SetDefault("HISTORY_DB_PATH", "./data/history.db")
	viper.SetDefault("STALENESS_WINDOW_DAYS", 7)
	viper.SetDefault("EXCEPTIONS_PATH", "./exceptions.json")
	viper.SetDefault("REPORT_DAYS_BEFORE", 1)
	viper.SetDefault("NOTIFY", "smtp")
	viper.SetDefault("LOG_LEVEL", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.InventoryPath == "" {
		return fmt.Errorf("INVENTORY is required")
	}
	if c.LogPath == "" {
		return fmt.Errorf("LOG_PATH is required")
	}
	if c.HistoryDBPath == "" {
		return fmt.Errorf("HISTORY_DB_PATH is required")
	}

	if c.StalenessWindowDays < 1 {
		return fmt.Errorf("STALENESS_WINDOW_DAYS must be at least 1")
	}
	if c.ReportDaysBefore < 0 {
		return fmt.Errorf("REPORT_DAYS_BEFORE must not be negative")
	}

	if err := c.validateNotify(); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// validateNotify validates delivery settings for the selected method
func (c *Config) validateNotify() error {
	switch c.Notify {
	case "smtp":
		if c.SMTPServer == "" {
			return fmt.Errorf("SMTP_SERVER is required when NOTIFY=smtp")
		}
		if c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_FROM is required when NOTIFY=smtp")
		}
		if c.SMTPTo == "" {
			return fmt.Errorf("SMTP_TO is required when NOTIFY=smtp")
		}

	case "telegram":
		if c.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when NOTIFY=telegram")
		}
		telegramTokenRegex := regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)
		if !telegramTokenRegex.MatchString(c.TelegramBotToken) {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN has invalid format (expected: 'number:token')")
		}
		if c.TelegramChannel == 0 {
			return fmt.Errorf("TELEGRAM_CHANNEL_ID is required when NOTIFY=telegram")
		}

	case "stdout":
		// Nothing to validate: the report goes to the console.

	default:
		return fmt.Errorf("NOTIFY must be 'smtp', 'telegram' or 'stdout' (got: %s)", c.Notify)
	}

	return nil
}

// StalenessWindow returns the staleness window as a duration.
func (c *Config) StalenessWindow() time.Duration {
	return time.Duration(c.StalenessWindowDays) * 24 * time.Hour
}

// ReportDate returns the date a run started at now reports on.
func (c *Config) ReportDate(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.ReportDaysBefore)
}

// HasSchedule returns true if daemon mode is configured.
func (c *Config) HasSchedule() bool {
	return c.Schedule != ""
}
