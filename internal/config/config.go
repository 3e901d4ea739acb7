package config

import (
	"errors"
	"fmt"
	"gato/Gato-Game/internal/db"
	"gato/Gato-Game/internal/validator"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const defaultJWTSecret = "gato-dev-secret-change-me"

// Config holds the server settings read from the environment.
type Config struct {
	HTTPAddr       string        `validate:"required"`
	RedisAddr      string        `validate:"required_if=SessionStore redis"`
	SessionStore   string        `validate:"oneof=memory redis"`
	SessionTTL     time.Duration `validate:"gt=0"`
	JWTSecret      string        `validate:"required,min=16"`
	NormalThinking time.Duration `validate:"gte=0"`
	HardThinking   time.Duration `validate:"gte=0"`
	LogLevel       slog.Level
	// DefaultSecret reports that JWT_SECRET was unset and tokens are signed
	// with the built-in development secret.
	DefaultSecret bool

	Otel OtelConfig
}

// OtelConfig configures the OpenTelemetry exporters.
type OtelConfig struct {
	Enabled           bool
	CollectorEndpoint string `validate:"required_if=Enabled true"`
	Stdout            bool
	ServiceName       string `validate:"required"`
	ServiceVersion    string
}

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:    getEnv("REDIS_CONNSTRING", db.DefaultRedisAddr),
		SessionStore: strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		Otel: OtelConfig{
			CollectorEndpoint: getEnv("OTEL_COLLECTOR_ENDPOINT", "otel-collector:4317"),
			ServiceName:       getEnv("OTEL_SERVICE_NAME", "gato-game"),
			ServiceVersion:    getEnv("SERVICE_VERSION", "v0.1.0"),
		},
	}

	cfg.DefaultSecret = os.Getenv("JWT_SECRET") == ""
	if cfg.DefaultSecret && cfg.SessionStore == StoreRedis {
		return nil, errors.New("JWT_SECRET must be set when SESSION_STORE is redis")
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.NormalThinking, err = getMillis("NORMAL_THINKING_MS", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.HardThinking, err = getMillis("HARD_THINKING_MS", 1000*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Otel.Enabled, err = getBool("OTEL_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.Otel.Stdout, err = getBool("OTEL_STDOUT", false); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "debug"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getMillis(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
