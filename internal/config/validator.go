// Package config provides configuration management, validation, and provider logic for the timel-e core project.
package config

import (
	"fmt"
	"strings"
)

// validator.go: Configuration validation logic and helpers.

// ValidatorImpl implements the Validator interface for configuration validation.
type ValidatorImpl struct{}

// NewConfigValidator creates and returns a new ValidatorImpl instance.
// Ensures all required configuration values are present and valid before the application starts.
func NewConfigValidator() *ValidatorImpl {
	return &ValidatorImpl{}
}

// ValidateGateway checks the fields required to run cmd/dgateway.
func (v *ValidatorImpl) ValidateGateway(config *APIConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errors []string

	if config.Port == "" {
		errors = append(errors, "GATEWAY_PORT is required")
	}
	if config.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required")
	}
	if config.AppNamespace.String() == "00000000-0000-0000-0000-000000000000" {
		errors = append(errors, "APP_NAMESPACE is required")
	}
	if config.TickPeriod <= 0 {
		errors = append(errors, "TICK_PERIOD_SECONDS must be positive")
	}
	if config.ReminderInterval <= 0 {
		errors = append(errors, "REMINDER_INTERVAL_HOURS must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// ValidateEdge checks the fields required to run cmd/edge.
func (v *ValidatorImpl) ValidateEdge(config *APIConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errors []string

	if config.Port == "" {
		errors = append(errors, "PORT is required")
	}
	if config.DBServiceURL == "" {
		errors = append(errors, "DB_SERVICE_URL is required")
	}
	if config.AppNamespace.String() == "00000000-0000-0000-0000-000000000000" {
		errors = append(errors, "APP_NAMESPACE is required")
	}
	if config.DBServiceTimeout <= 0 {
		errors = append(errors, "DB_SERVICE_TIMEOUT_SECONDS must be positive")
	}
	if config.MLServiceTimeout <= 0 {
		errors = append(errors, "ML_SERVICE_TIMEOUT_SECONDS must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
