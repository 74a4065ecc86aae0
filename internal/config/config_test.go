package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockConfigProvider_StringsAndDefaults(t *testing.T) {
	p := NewMockConfigProvider(map[string]string{
		"PORT": "8080",
		"FLAG": "true",
		"NUM":  "42",
	})

	assert.Equal(t, "8080", p.GetString("PORT"))
	assert.Equal(t, "fallback", p.GetStringOrDefault("MISSING", "fallback"))
	assert.True(t, p.GetBool("FLAG"))
	assert.Equal(t, 42, p.GetInt("NUM"))
	assert.Equal(t, 7, p.GetIntOrDefault("MISSING", 7))

	_, err := p.GetRequiredString("MISSING")
	assert.Error(t, err)
}

func TestBuilder_BuildGateway_RequiresProvider(t *testing.T) {
	b := NewConfigBuilder()
	_, err := b.BuildGateway(context.Background())
	require.Error(t, err)
}

func TestBuilder_BuildGateway_Defaults(t *testing.T) {
	provider := NewMockConfigProvider(map[string]string{
		"DATABASE_URL": "postgres://localhost/timele",
	})
	b := NewConfigBuilder().WithProvider(provider)
	cfg, err := b.BuildGateway(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://localhost/timele", cfg.DatabaseURL)
	assert.False(t, cfg.ResetDatabaseOnStartup)
	assert.Equal(t, int64(60), int64(cfg.TickPeriod.Seconds()))
}

func TestBuilder_BuildEdge_Defaults(t *testing.T) {
	provider := NewMockConfigProvider(map[string]string{})
	b := NewConfigBuilder().WithProvider(provider)
	cfg, err := b.BuildEdge(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:9090", cfg.DBServiceURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestValidator_ValidateGateway(t *testing.T) {
	v := NewConfigValidator()

	err := v.ValidateGateway(nil)
	assert.Error(t, err)

	provider := NewMockConfigProvider(map[string]string{"DATABASE_URL": "postgres://localhost/timele"})
	cfg, err := NewConfigBuilder().WithProvider(provider).BuildGateway(context.Background())
	require.NoError(t, err)
	assert.NoError(t, v.ValidateGateway(cfg))

	cfg.DatabaseURL = ""
	assert.Error(t, v.ValidateGateway(cfg))
}

func TestValidator_ValidateEdge(t *testing.T) {
	v := NewConfigValidator()

	provider := NewMockConfigProvider(map[string]string{})
	cfg, err := NewConfigBuilder().WithProvider(provider).BuildEdge(context.Background())
	require.NoError(t, err)
	assert.NoError(t, v.ValidateEdge(cfg))

	cfg.DBServiceURL = ""
	assert.Error(t, v.ValidateEdge(cfg))
}
