// Package config loads application-level settings from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// APP_ENV values. Development fallbacks are enabled only by an explicit EnvDevelopment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime settings shared by the server wiring.
type Config struct {
	AppEnv string // development / staging / production
	Port   string

	JWTSecret      string
	AccessTokenTTL time.Duration

	SMSCodeLength  int
	SMSCodeTTL     time.Duration
	SMSCooldown    time.Duration
	SMSSendTimeout time.Duration

	// SMSSendRate / SMSSendBurst throttle /auth/sms/send per client IP.
	SMSSendRate  float64
	SMSSendBurst int
}

// Load reads configuration from the environment, applying defaults for anything unset.
func Load() Config {
	return Config{
		AppEnv:         getEnv("APP_ENV", EnvProduction),
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 8*24*time.Hour),
		SMSCodeLength:  getEnvInt("SMS_CODE_LENGTH", 6),
		SMSCodeTTL:     getEnvDuration("SMS_CODE_TTL", 5*time.Minute),
		SMSCooldown:    getEnvDuration("SMS_COOLDOWN", 60*time.Second),
		SMSSendTimeout: getEnvDuration("SMS_SEND_TIMEOUT", 5*time.Second),
		SMSSendRate:    getEnvFloat("SMS_SEND_RATE", 1),
		SMSSendBurst:   getEnvInt("SMS_SEND_BURST", 5),
	}
}

// DevFallbacksEnabled reports whether mock providers, the in-memory code store and
// logged SMS codes may be used. Any APP_ENV other than "development" disables them.
func (c Config) DevFallbacksEnabled() bool {
	return c.AppEnv == EnvDevelopment
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
