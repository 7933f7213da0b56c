// Package config provides configuration management for the voice call relay.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultRealtimeBase is the voice API host used when REALTIME_BASE is unset.
	DefaultRealtimeBase = "https://api.openai.com"

	callsPath  = "/v1/voice/streams/calls"
	eventsPath = "/events"
)

// Config holds all configuration values for the application.
type Config struct {
	// Voice API
	CallerID       string
	WebhookBase    string
	RealtimeAPIKey string
	RealtimeBase   string

	// Automation hooks
	CatchHookURL  string
	StatusHookURL string

	// Agent
	PromptFile string
	SchemaFile string
	Products   []string

	// HTTP
	Port               int
	ClientTimeout      time.Duration
	CORSAllowedOrigins []string

	// AWS (s3:// prompt and schema sources)
	AWSRegion string

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// Voice API
		CallerID:       getEnv("CALLER_ID", ""),
		WebhookBase:    getEnv("WEBHOOK_BASE", ""),
		RealtimeAPIKey: getEnv("REALTIME_API_KEY", ""),
		RealtimeBase:   getEnv("REALTIME_BASE", DefaultRealtimeBase),

		// Automation hooks
		CatchHookURL:  getEnv("ZAPIER_CATCH_HOOK_URL", ""),
		StatusHookURL: getEnv("ZAPIER_STATUS_HOOK_URL", ""),

		// Agent
		PromptFile: getEnv("AGENT_PROMPT_FILE", "agent_prompt.txt"),
		SchemaFile: getEnv("AGENT_SCHEMA_FILE", "schema.json"),
		Products:   getEnvList("AGENT_PRODUCTS", []string{"Basis", "Komfort", "Premium"}),

		// HTTP
		Port:               getEnvInt("PORT", 3000),
		ClientTimeout:      getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// CallsEndpoint returns the voice API endpoint that starts outbound calls.
func (c *Config) CallsEndpoint() string {
	base := c.RealtimeBase
	if base == "" {
		base = DefaultRealtimeBase
	}
	return strings.TrimRight(base, "/") + callsPath
}

// EventsWebhookURL returns the URL registered with the voice API for event delivery.
func (c *Config) EventsWebhookURL() string {
	return strings.TrimRight(c.WebhookBase, "/") + eventsPath
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
