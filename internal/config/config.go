package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TransportPolling = "polling"
	TransportWebhook = "webhook"

	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds every setting the bot reads at startup.
type Config struct {
	BotToken string
	AdminID  int64

	Env      string
	LogLevel string

	Transport     string
	WebhookURL    string
	WebhookSecret string
	PollTimeout   int
	UpdateBuffer  int

	Port string

	StateBackend  string
	DataFile      string
	DatabaseURL   string
	SQLitePath    string
	FlushSchedule string

	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration

	JWTSecret         string
	AdminPasswordHash string
	CORSOrigins       []string
}

// LoadConfig reads configuration in three layers, later ones winning:
// the YAML file named by CONFIG_FILE, then .env, then the real environment.
// .env never overrides a variable that is already set.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	get := func(key, def string) string {
		if v, ok := file[key]; ok {
			def = v
		}
		return GetEnv(key, def)
	}

	cfg := &Config{
		BotToken:          get("BOT_TOKEN", ""),
		Env:               get("ENV", "development"),
		LogLevel:          get("LOG_LEVEL", "info"),
		Transport:         get("TRANSPORT", TransportPolling),
		WebhookURL:        strings.TrimRight(get("WEBHOOK_URL", ""), "/"),
		WebhookSecret:     get("WEBHOOK_SECRET", ""),
		Port:              get("PORT", "8081"),
		StateBackend:      get("STATE_BACKEND", BackendFile),
		DataFile:          get("DATA_FILE", "bot_data.json"),
		DatabaseURL:       get("DATABASE_URL", ""),
		SQLitePath:        get("SQLITE_PATH", "bot_data.db"),
		FlushSchedule:     get("FLUSH_SCHEDULE", ""),
		SessionBackend:    get("SESSION_BACKEND", SessionMemory),
		RedisURL:          get("REDIS_URL", ""),
		JWTSecret:         get("JWT_SECRET", ""),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
		CORSOrigins:       splitList(get("CORS_ORIGINS", "")),
	}

	if raw := get("ADMIN_ID", ""); raw != "" {
		cfg.AdminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID %q: %w", raw, err)
		}
	}
	if cfg.PollTimeout, err = atoi("POLL_TIMEOUT", get("POLL_TIMEOUT", "30")); err != nil {
		return nil, err
	}
	if cfg.UpdateBuffer, err = atoi("UPDATE_BUFFER", get("UPDATE_BUFFER", "100")); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	return cfg, nil
}

// Validate checks the combination of settings. Every problem is reported,
// not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	if c.AdminID == 0 {
		errs = append(errs, errors.New("ADMIN_ID is required"))
	}

	switch c.Transport {
	case TransportPolling:
	case TransportWebhook:
		if c.WebhookURL == "" {
			errs = append(errs, errors.New("WEBHOOK_URL is required when TRANSPORT=webhook"))
		}
		if c.WebhookSecret == "" {
			errs = append(errs, errors.New("WEBHOOK_SECRET is required when TRANSPORT=webhook"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSPORT %q", c.Transport))
	}

	switch c.StateBackend {
	case BackendFile:
		if c.DataFile == "" {
			errs = append(errs, errors.New("DATA_FILE must not be empty"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STATE_BACKEND=postgres"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend))
	}

	switch c.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}

	if c.AdminPasswordHash != "" && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set"))
	}
	if c.PollTimeout < 0 {
		errs = append(errs, errors.New("POLL_TIMEOUT must not be negative"))
	}
	if c.UpdateBuffer < 1 {
		errs = append(errs, errors.New("UPDATE_BUFFER must be at least 1"))
	}

	return errors.Join(errs...)
}

// AdminAPIEnabled reports whether login and the protected routes are served.
func (c *Config) AdminAPIEnabled() bool {
	return c.AdminPasswordHash != ""
}

// GetEnv returns the environment variable key, or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// loadFile reads a flat YAML mapping of setting names to values, e.g.
//
//	BOT_TOKEN: "123:abc"
//	admin_id: 42
//
// Keys are case-insensitive. An empty path yields no values.
func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			parts := make([]string, 0, len(list))
			for _, item := range list {
				parts = append(parts, fmt.Sprint(item))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
			continue
		}
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

func atoi(key, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
