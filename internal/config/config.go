package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddr            = ":8080"
	defaultDatabaseDSN     = "fundis.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "12h"
	defaultMpesaBaseURL    = "https://sandbox.safaricom.co.ke"
	defaultMpesaTimeout    = "30s"
	defaultPollInitial     = "5s"
	defaultPollInterval    = "10s"
	defaultPollMaxAttempts = "30"
	defaultPendingCode     = "1032"
)

type Config struct {
	AppEnv      string
	Addr        string
	DatabaseDSN string

	JWTSecret         string
	JWTTTL            time.Duration
	AdminEmail        string
	AdminPasswordHash string

	Mpesa MpesaConfig
	Poll  PollConfig
}

type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Passkey        string
	Shortcode      string
	BaseURL        string
	CallbackURL    string
	Timeout        time.Duration
}

type PollConfig struct {
	InitialDelay      time.Duration
	Interval          time.Duration
	MaxAttempts       int
	PendingResultCode string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Addr = strings.TrimSpace(getEnv("ADDR", defaultAddr))
	cfg.DatabaseDSN = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseDSN))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AdminEmail = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	cfg.AdminPasswordHash = strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH"))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.Mpesa = MpesaConfig{
		ConsumerKey:    strings.TrimSpace(os.Getenv("MPESA_CONSUMER_KEY")),
		ConsumerSecret: strings.TrimSpace(os.Getenv("MPESA_CONSUMER_SECRET")),
		Passkey:        strings.TrimSpace(os.Getenv("MPESA_PASSKEY")),
		Shortcode:      strings.TrimSpace(getEnv("MPESA_SHORTCODE", "174379")),
		BaseURL:        strings.TrimSpace(getEnv("MPESA_BASE_URL", defaultMpesaBaseURL)),
		CallbackURL:    strings.TrimSpace(os.Getenv("MPESA_CALLBACK_URL")),
	}
	cfg.Mpesa.Timeout, err = parseDurationEnv("MPESA_TIMEOUT", defaultMpesaTimeout)
	if err != nil {
		return nil, err
	}

	cfg.Poll.InitialDelay, err = parseDurationEnv("MPESA_POLL_INITIAL_DELAY", defaultPollInitial)
	if err != nil {
		return nil, err
	}
	cfg.Poll.Interval, err = parseDurationEnv("MPESA_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return nil, err
	}
	cfg.Poll.MaxAttempts, err = parseIntEnv("MPESA_POLL_MAX_ATTEMPTS", defaultPollMaxAttempts)
	if err != nil {
		return nil, err
	}
	cfg.Poll.PendingResultCode = strings.TrimSpace(getEnv("MPESA_PENDING_RESULT_CODE", defaultPendingCode))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Poll.InitialDelay < 0 {
		return fmt.Errorf("MPESA_POLL_INITIAL_DELAY must be >= 0")
	}
	if cfg.Poll.Interval <= 0 {
		return fmt.Errorf("MPESA_POLL_INTERVAL must be > 0")
	}
	if cfg.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("MPESA_POLL_MAX_ATTEMPTS must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.Mpesa.ConsumerKey == "" || cfg.Mpesa.ConsumerSecret == "" {
			return fmt.Errorf("in prod/release MPESA_CONSUMER_KEY and MPESA_CONSUMER_SECRET must be set")
		}
		if cfg.Mpesa.Passkey == "" {
			return fmt.Errorf("in prod/release MPESA_PASSKEY must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
