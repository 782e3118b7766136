package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_COOKIE_NAME", "sb-access-token")
	t.Setenv("CREDIT_PRICE_CENTS", "150")
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "sb-access-token", cfg.Auth.SessionCookieName)
	assert.Equal(t, 150, cfg.Stripe.UnitPriceCents)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_BASE_URL", "https://api.gen8n.test/")
	t.Setenv("OPENAI_API_KEY", "sk-platform-openai")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "https://api.gen8n.test", cfg.App.BaseURL)
	assert.Equal(t, "sk-platform-openai", cfg.Generator.PlatformKeys["openai"])
	assert.NotContains(t, cfg.Generator.PlatformKeys, "anthropic")
	assert.True(t, cfg.Database.Debug)
	assert.True(t, cfg.App.IsProduction())
}
