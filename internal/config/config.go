package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server.
type Config struct {
	HTTPAddr       string        `toml:"http_addr"`
	DatabaseURL    string        `toml:"database_url"`
	MongoDatabase  string        `toml:"mongo_database"`
	JWTSecret      string        `toml:"jwt_secret"`
	TokenTTL       time.Duration `toml:"-"`
	GoogleClientID string        `toml:"google_client_id"`
	TelegramToken  string        `toml:"telegram_token"`
	DigestTime     string        `toml:"digest_time"`
	TimeZone       string        `toml:"time_zone"`
	LogLevel       string        `toml:"log_level"`
	LogFormat      string        `toml:"log_format"`
	LogFile        string        `toml:"log_file"`
	CORSOrigins    []string      `toml:"cors_origins"`

	// TokenTTLRaw is the TOML spelling of TokenTTL, e.g. "168h".
	TokenTTLRaw string `toml:"token_ttl"`

	Location *time.Location `toml:"-"`
}

func defaults() Config {
	return Config{
		HTTPAddr:      ":5000",
		DatabaseURL:   "todo_planner.db",
		MongoDatabase: "todo_planner",
		TokenTTL:      7 * 24 * time.Hour,
		DigestTime:    "08:00",
		TimeZone:      "Local",
		LogLevel:      "info",
		LogFormat:     "console",
		CORSOrigins:   []string{"*"},
	}
}

// Load reads configuration with sane defaults. Sources, lowest priority
// first: built-in defaults, the TOML file at path (if non-empty), a .env
// file in the working directory, and the process environment.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if cfg.TokenTTLRaw != "" {
			ttl, err := time.ParseDuration(cfg.TokenTTLRaw)
			if err != nil || ttl <= 0 {
				return cfg, fmt.Errorf("invalid token_ttl %q", cfg.TokenTTLRaw)
			}
			cfg.TokenTTL = ttl
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	overrideString(&cfg.HTTPAddr, "HTTP_ADDR")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.MongoDatabase, "MONGODB_DATABASE")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	overrideString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	overrideString(&cfg.DigestTime, "DIGEST_TIME")
	overrideString(&cfg.TimeZone, "TIME_ZONE")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.LogFormat, "LOG_FORMAT")
	overrideString(&cfg.LogFile, "LOG_FILE")

	if raw := strings.TrimSpace(os.Getenv("TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return cfg, fmt.Errorf("invalid TOKEN_TTL %q", raw)
		}
		cfg.TokenTTL = ttl
	}
	if raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return cfg, fmt.Errorf("invalid TIME_ZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
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
