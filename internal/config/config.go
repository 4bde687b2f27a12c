package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	LogFormat   string
	DatabaseURL string

	// Smartflow provider settings. The API token may be supplied either as
	// plaintext (SMARTFLOW_API_TOKEN) or AES-GCM encrypted
	// (SMARTFLOW_API_TOKEN_ENC + SETTINGS_KEY); see APIToken.
	SmartflowBaseURL     string
	SmartflowAPIToken    string
	SmartflowAPITokenEnc string
	SettingsKey          string
	SmartflowDIDNumber   string
	SmartflowTimeout     time.Duration

	// Polling schedule for the call-records fetcher, cron syntax.
	PollSchedule string
	PollEnabled  bool
	PollTimeout  time.Duration

	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SmartflowBaseURL:     getEnv("SMARTFLOW_BASE_URL", "https://api-smartflow.tatateleservices.com"),
		SmartflowAPIToken:    getEnv("SMARTFLOW_API_TOKEN", ""),
		SmartflowAPITokenEnc: getEnv("SMARTFLOW_API_TOKEN_ENC", ""),
		SettingsKey:          getEnv("SETTINGS_KEY", ""),
		SmartflowDIDNumber:   getEnv("SMARTFLOW_DID_NUMBER", ""),
		SmartflowTimeout:     getEnvAsDuration("SMARTFLOW_TIMEOUT", 10*time.Second),

		PollSchedule: getEnv("POLL_SCHEDULE", "*/30 * * * *"),
		PollEnabled:  getEnvAsBool("POLL_ENABLED", true),
		PollTimeout:  getEnvAsDuration("POLL_TIMEOUT", 5*time.Minute),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
	}
}

// getEnvAsSlice splits a comma-separated environment variable.
func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// APIToken returns the provider API token, decrypting the encrypted form
// when one is configured. The plaintext variable wins if both are set.
func (c *Config) APIToken() (string, error) {
	if c.SmartflowAPIToken != "" {
		return c.SmartflowAPIToken, nil
	}
	if c.SmartflowAPITokenEnc == "" {
		return "", nil
	}
	return decryptToken(c.SmartflowAPITokenEnc, c.SettingsKey)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
