package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.WatchEngine)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, NarratorNone, cfg.Narrator.Backend)
	assert.Empty(t, cfg.Redis.URL)
	assert.Zero(t, cfg.RateLimit.RequestsPerMinute)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("AXIOMA_ADDR", ":9090")
	t.Setenv("AXIOMA_ENGINE_WATCH", "false")
	t.Setenv("AXIOMA_SESSION_TTL", "5m")
	t.Setenv("AXIOMA_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("AXIOMA_NARRATOR", "OpenAI")
	t.Setenv("AXIOMA_NARRATOR_API_KEY", "sk-test")
	t.Setenv("AXIOMA_RATE_LIMIT_PER_MINUTE", "60")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.WatchEngine)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, NarratorOpenAI, cfg.Narrator.Backend)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"malformed duration", map[string]string{"AXIOMA_SESSION_TTL": "soon"}, `parse AXIOMA_SESSION_TTL="soon"`},
		{"malformed int", map[string]string{"AXIOMA_NARRATOR_CACHE_SIZE": "many"}, `parse AXIOMA_NARRATOR_CACHE_SIZE="many"`},
		{"malformed bool", map[string]string{"AXIOMA_ENGINE_WATCH": "perhaps"}, `parse AXIOMA_ENGINE_WATCH="perhaps"`},
		{"unknown narrator", map[string]string{"AXIOMA_NARRATOR": "oracle"}, "AXIOMA_NARRATOR must be one of"},
		{"openai without key", map[string]string{"AXIOMA_NARRATOR": "openai"}, "AXIOMA_NARRATOR_API_KEY is required"},
		{"non-positive ttl", map[string]string{"AXIOMA_SESSION_TTL": "0s"}, "AXIOMA_SESSION_TTL must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
