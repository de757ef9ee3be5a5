package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "LLM_PROVIDER"} {
		t.Setenv(key, "")
	}
}

func TestInitConfig(t *testing.T) {
	t.Run("missing secret aborts", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("SESSION_SECRET", "")
		t.Setenv("JWT_SECRET", "")

		_, err := InitConfig()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("secret and defaults", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("SESSION_SECRET", "test-secret")

		cfg, err := InitConfig()
		require.NoError(t, err)
		assert.Equal(t, "test-secret", cfg.JWT.SecretKey)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
		assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model())
		assert.False(t, cfg.LLM.Delegated(), "no key means rule-based generation")
		assert.Equal(t, "travel_planner", cfg.Repositories.Postgres.DB)
	})

	t.Run("openai key enables delegated mode", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("SESSION_SECRET", "test-secret")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := InitConfig()
		require.NoError(t, err)
		assert.True(t, cfg.LLM.Delegated())
		assert.Equal(t, "sk-test", cfg.LLM.APIKey())
	})

	t.Run("gemini provider uses gemini key", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("SESSION_SECRET", "test-secret")
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := InitConfig()
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.False(t, cfg.LLM.Delegated())
		assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model())
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("SESSION_SECRET", "test-secret")
		t.Setenv("LLM_PROVIDER", "claude")

		_, err := InitConfig()
		assert.Error(t, err)
	})
}
