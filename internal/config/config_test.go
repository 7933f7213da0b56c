package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CALLER_ID", "WEBHOOK_BASE", "REALTIME_API_KEY", "REALTIME_BASE",
		"ZAPIER_CATCH_HOOK_URL", "ZAPIER_STATUS_HOOK_URL", "PORT",
		"AGENT_PROMPT_FILE", "AGENT_SCHEMA_FILE", "AGENT_PRODUCTS",
		"HTTP_CLIENT_TIMEOUT", "CORS_ALLOWED_ORIGINS", "STAGE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRealtimeBase, cfg.RealtimeBase)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "agent_prompt.txt", cfg.PromptFile)
	assert.Equal(t, "schema.json", cfg.SchemaFile)
	assert.Equal(t, []string{"Basis", "Komfort", "Premium"}, cfg.Products)
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALLER_ID", "+4930123456")
	t.Setenv("WEBHOOK_BASE", "https://relay.example.com/")
	t.Setenv("REALTIME_API_KEY", "sk-test")
	t.Setenv("REALTIME_BASE", "http://voice.local:9000/")
	t.Setenv("ZAPIER_CATCH_HOOK_URL", "https://hooks.example.com/catch")
	t.Setenv("ZAPIER_STATUS_HOOK_URL", "https://hooks.example.com/status")
	t.Setenv("PORT", "8081")
	t.Setenv("AGENT_PRODUCTS", " Basic , ,Gold ")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "+4930123456", cfg.CallerID)
	assert.Equal(t, "sk-test", cfg.RealtimeAPIKey)
	assert.Equal(t, "https://hooks.example.com/catch", cfg.CatchHookURL)
	assert.Equal(t, "https://hooks.example.com/status", cfg.StatusHookURL)
	assert.Equal(t, "http://voice.local:9000/v1/voice/streams/calls", cfg.CallsEndpoint())
	assert.Equal(t, "https://relay.example.com/events", cfg.EventsWebhookURL())
	assert.Equal(t, "0.0.0.0:8081", cfg.Addr())
	assert.Equal(t, []string{"Basic", "Gold"}, cfg.Products)
	assert.Equal(t, 5*time.Second, cfg.ClientTimeout)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	assert.Equal(t, 3000, getEnvInt("PORT", 3000))
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"", 30 * time.Second},
		{"15s", 15 * time.Second},
		{"2m", 2 * time.Minute},
		{"10", 10 * time.Second},
		{"-1", 30 * time.Second},
		{"soon", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("HTTP_CLIENT_TIMEOUT", tt.value)
			assert.Equal(t, tt.expected, getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second))
		})
	}
}

func TestCallsEndpoint_EmptyBaseUsesDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "https://api.openai.com/v1/voice/streams/calls", cfg.CallsEndpoint())
}
