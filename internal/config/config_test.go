package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 48000, cfg.MaxTranscriptChars)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.TelemetryURL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("CHAT_TIMEOUT", "45s")
	t.Setenv("MAX_TRANSCRIPT_CHARS", "1000")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://other.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 45*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 1000, cfg.MaxTranscriptChars)
	assert.Equal(t, []string{"https://app.example.com", "https://other.example.com"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("CHAT_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad transcript cap", func(t *testing.T) {
		t.Setenv("MAX_TRANSCRIPT_CHARS", "lots")
		_, err := Load()
		require.Error(t, err)
	})
}
