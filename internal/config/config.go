package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TZ_NAME must resolve on minimal images
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	// Telegram
	BotToken      string
	OwnerID       int64
	ownerIDRaw    string
	BotMode       string
	WebhookURL    string
	WebhookSecret string

	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Ledger
	TimeZone     string
	HistoryLimit int

	// AMQP (disabled when AMQPURL is empty)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Logging
	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration
}

func Load() *Config {
	ownerID := strings.TrimSpace(os.Getenv("OWNER_ID"))

	cfg := &Config{
		BotToken:      getEnv("BOT_TOKEN", ""),
		OwnerID:       getEnvInt64("OWNER_ID", 0),
		ownerIDRaw:    ownerID,
		BotMode:       strings.ToLower(getEnv("BOT_MODE", ModePolling)),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		Port:         getEnv("PORT", "7860"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", getEnv("DATABASE_PATH", "./data/bot_data.db")),

		TimeZone:     getEnv("TZ_NAME", "Asia/Jakarta"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 5),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "dompet"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "ledger"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg
}

// BotEnabled reports whether a bot token is configured. Without one only the
// HTTP server runs.
func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}

// OwnerRestricted reports whether access is limited to OwnerID.
func (c *Config) OwnerRestricted() bool {
	return c.OwnerID != 0
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate bot mode
	switch c.BotMode {
	case ModePolling:
	case ModeWebhook:
		if c.BotEnabled() {
			if c.WebhookURL == "" {
				errors = append(errors, "WEBHOOK_URL is required when BOT_MODE is webhook")
			} else if u, err := url.Parse(c.WebhookURL); err != nil || u.Scheme != "https" || u.Host == "" {
				errors = append(errors, fmt.Sprintf("invalid webhook URL '%s': must be an absolute https URL", c.WebhookURL))
			}
			if c.WebhookSecret == "" {
				errors = append(errors, "WEBHOOK_SECRET is required when BOT_MODE is webhook")
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid bot mode '%s': must be one of [%s %s]", c.BotMode, ModePolling, ModeWebhook))
	}

	// A malformed OWNER_ID must not fall back to the unrestricted default
	if c.ownerIDRaw != "" {
		if id, err := strconv.ParseInt(c.ownerIDRaw, 10, 64); err != nil || id <= 0 {
			errors = append(errors, fmt.Sprintf("invalid owner id '%s': must be a positive Telegram user id", c.ownerIDRaw))
		}
	} else if c.OwnerID < 0 {
		errors = append(errors, fmt.Sprintf("invalid owner id %d: must be positive", c.OwnerID))
	}

	// Validate SQLite path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid time zone '%s': %v", c.TimeZone, err))
	}

	if c.HistoryLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must be at least 1", c.HistoryLimit))
	} else if c.HistoryLimit > 50 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must be at most 50", c.HistoryLimit))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	switch c.LogFormat {
	case "text", "json", "tint":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of [text json tint]", c.LogFormat))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
