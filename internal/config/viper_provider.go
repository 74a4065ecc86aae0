package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// viper_provider.go: adapts a *viper.Viper (populated from env vars, .env files, and
// cobra flags bound with BindPFlag) to the Provider interface.

// ViperProvider implements Provider on top of a *viper.Viper instance.
type ViperProvider struct {
	v *viper.Viper
}

// NewViperProvider wraps the given viper instance as a Provider.
func NewViperProvider(v *viper.Viper) *ViperProvider {
	return &ViperProvider{v: v}
}

func (p *ViperProvider) GetString(key string) string {
	return p.v.GetString(key)
}

func (p *ViperProvider) GetStringOrDefault(key, defaultValue string) string {
	if value := p.v.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func (p *ViperProvider) GetRequiredString(key string) (string, error) {
	value := p.v.GetString(key)
	if value == "" {
		return "", fmt.Errorf("required configuration value %s is not set", key)
	}
	return value, nil
}

func (p *ViperProvider) GetInt(key string) int {
	return p.v.GetInt(key)
}

func (p *ViperProvider) GetIntOrDefault(key string, defaultValue int) int {
	if !p.v.IsSet(key) {
		return defaultValue
	}
	return p.v.GetInt(key)
}

func (p *ViperProvider) GetBool(key string) bool {
	return p.v.GetBool(key)
}

func (p *ViperProvider) GetBoolOrDefault(key string, defaultValue bool) bool {
	if !p.v.IsSet(key) {
		return defaultValue
	}
	return p.v.GetBool(key)
}
