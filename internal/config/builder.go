// Package config provides configuration management, validation, and provider logic for the timel-e core project.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// builder.go: Configuration builder pattern and construction logic.

// BuilderImpl implements the Builder interface for constructing APIConfig instances with various providers and settings.
type BuilderImpl struct {
	provider Provider
	database DatabaseProvider
	redis    RedisProvider
	mongo    MongoProvider
}

// NewConfigBuilder creates and returns a new instance of BuilderImpl.
func NewConfigBuilder() *BuilderImpl {
	return &BuilderImpl{}
}

// WithProvider sets the configuration provider for the builder.
func (b *BuilderImpl) WithProvider(provider Provider) Builder {
	b.provider = provider
	return b
}

// WithDatabase sets the database provider for the builder.
func (b *BuilderImpl) WithDatabase(provider DatabaseProvider) Builder {
	b.database = provider
	return b
}

// WithRedis sets the Redis provider for the builder.
func (b *BuilderImpl) WithRedis(provider RedisProvider) Builder {
	b.redis = provider
	return b
}

// WithMongo sets the MongoDB provider for the builder.
func (b *BuilderImpl) WithMongo(provider MongoProvider) Builder {
	b.mongo = provider
	return b
}

func (b *BuilderImpl) namespace() (uuid.UUID, error) {
	raw := b.provider.GetStringOrDefault("APP_NAMESPACE", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ns, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid APP_NAMESPACE: %w", err)
	}
	return ns, nil
}

func (b *BuilderImpl) connectRedis(ctx context.Context, cfg *APIConfig) error {
	if b.redis == nil {
		return nil
	}
	client, err := b.redis.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cfg.RedisClient = client
	return nil
}

func (b *BuilderImpl) connectMongo(ctx context.Context, cfg *APIConfig) error {
	if b.mongo == nil {
		return nil
	}
	client, db, err := b.mongo.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	cfg.MongoClient = client
	cfg.MongoDB = db
	return nil
}

// BuildGateway constructs the APIConfig used by cmd/dgateway.
func (b *BuilderImpl) BuildGateway(ctx context.Context) (*APIConfig, error) {
	if b.provider == nil {
		return nil, fmt.Errorf("config provider is required")
	}

	ns, err := b.namespace()
	if err != nil {
		return nil, err
	}

	tickSeconds := b.provider.GetIntOrDefault("TICK_PERIOD_SECONDS", 60)
	reminderHours := b.provider.GetIntOrDefault("REMINDER_INTERVAL_HOURS", 24)

	cfg := &APIConfig{
		Port:                   b.provider.GetStringOrDefault("GATEWAY_PORT", "9090"),
		AppNamespace:           ns,
		DatabaseURL:            b.provider.GetString("DATABASE_URL"),
		ResetDatabaseOnStartup: b.provider.GetBoolOrDefault("RESET_DATABASE_ON_STARTUP", false),
		CatalogCSVPath:         b.provider.GetStringOrDefault("CATALOG_CSV_PATH", ""),
		TickPeriod:             time.Duration(tickSeconds) * time.Second,
		ReminderInterval:       time.Duration(reminderHours) * time.Hour,
		NotificationEmail:      b.provider.GetStringOrDefault("NOTIFICATION_FROM_EMAIL", "no-reply@timel-e.local"),
	}

	if err := b.connectMongo(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BuildEdge constructs the APIConfig used by cmd/edge.
func (b *BuilderImpl) BuildEdge(ctx context.Context) (*APIConfig, error) {
	if b.provider == nil {
		return nil, fmt.Errorf("config provider is required")
	}

	ns, err := b.namespace()
	if err != nil {
		return nil, err
	}

	dbTimeoutSeconds := b.provider.GetIntOrDefault("DB_SERVICE_TIMEOUT_SECONDS", 5)
	mlTimeoutSeconds := b.provider.GetIntOrDefault("ML_SERVICE_TIMEOUT_SECONDS", 10)
	origins := b.provider.GetStringOrDefault("CORS_ALLOWED_ORIGINS", "*")

	cfg := &APIConfig{
		Port:             b.provider.GetStringOrDefault("PORT", "8080"),
		AppNamespace:     ns,
		DBServiceURL:     b.provider.GetStringOrDefault("DB_SERVICE_URL", "http://localhost:9090"),
		DBServiceTimeout: time.Duration(dbTimeoutSeconds) * time.Second,
		MLServiceURL:     b.provider.GetString("ML_SERVICE_URL"),
		MLServiceTimeout: time.Duration(mlTimeoutSeconds) * time.Second,
		AllowedOrigins:   splitAndTrim(origins),
	}

	if err := b.connectRedis(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
