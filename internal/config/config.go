// Package config provides configuration management, validation, and provider logic for the timel-e core project.
package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/timel-e/core/internal/database"
)

// config.go: the shared APIConfig struct and its loading paths for both cmd/dgateway
// and cmd/edge. Each binary only populates and validates the fields it needs.

// APIConfig holds all configuration shared by the Data Gateway and Edge binaries.
type APIConfig struct {
	// Server configuration
	Port string

	// Identity configuration
	AppNamespace uuid.UUID

	// Database configuration (Data Gateway only)
	DatabaseURL            string
	DBConn                 *sql.DB
	DB                     *database.Queries
	ResetDatabaseOnStartup bool
	CatalogCSVPath         string

	// Redis configuration (Edge only, rate limiting + response cache)
	RedisClient redis.Cmdable

	// MongoDB configuration (Data Gateway only, notification audit trail)
	MongoClient *mongo.Client
	MongoDB     *mongo.Database

	// Notification scheduler configuration (Data Gateway only)
	TickPeriod        time.Duration
	ReminderInterval  time.Duration
	NotificationEmail string

	// Internal E<->D contract (Edge only)
	DBServiceURL     string
	DBServiceTimeout time.Duration

	// Recommender contract (Edge only)
	MLServiceURL     string
	MLServiceTimeout time.Duration

	// CORS (Edge only)
	AllowedOrigins []string
}

// LoadGatewayConfig loads the configuration needed by cmd/dgateway.
func LoadGatewayConfig(ctx context.Context, provider Provider, dbProvider DatabaseProvider, mongoProvider MongoProvider) (*APIConfig, error) {
	builder := NewConfigBuilder().
		WithProvider(provider).
		WithDatabase(dbProvider).
		WithMongo(mongoProvider)

	cfg, err := builder.BuildGateway(ctx)
	if err != nil {
		return nil, err
	}

	if dbProvider != nil && cfg.DatabaseURL != "" {
		postgresProvider := NewPostgresProvider(cfg.DatabaseURL)
		db, dbQueries, err := postgresProvider.Connect(ctx)
		if err != nil {
			return nil, err
		}
		cfg.DB = dbQueries
		cfg.DBConn = db
	}

	if err := NewConfigValidator().ValidateGateway(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEdgeConfig loads the configuration needed by cmd/edge.
func LoadEdgeConfig(ctx context.Context, provider Provider, redisProvider RedisProvider) (*APIConfig, error) {
	builder := NewConfigBuilder().
		WithProvider(provider).
		WithRedis(redisProvider)

	cfg, err := builder.BuildEdge(ctx)
	if err != nil {
		return nil, err
	}

	if err := NewConfigValidator().ValidateEdge(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadGatewayConfig loads the gateway configuration or terminates the process.
// Mirrors the teacher's fail-fast LoadConfig entrypoint for a composition root.
func MustLoadGatewayConfig(provider Provider) *APIConfig {
	dbURL := provider.GetString("DATABASE_URL")
	mongoURI := provider.GetStringOrDefault("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := LoadGatewayConfig(
		context.Background(),
		provider,
		NewPostgresProvider(dbURL),
		NewMongoProvider(mongoURI, provider.GetStringOrDefault("MONGO_DATABASE", "timele_audit")),
	)
	if err != nil {
		log.Fatal("failed to load data gateway configuration: ", err)
	}
	return cfg
}

// MustLoadEdgeConfig loads the edge configuration or terminates the process.
func MustLoadEdgeConfig(provider Provider) *APIConfig {
	redisAddr := provider.GetString("REDIS_ADDR")
	var redisProvider RedisProvider
	if redisAddr != "" {
		redisProvider = NewRedisProvider(redisAddr, provider.GetString("REDIS_USERNAME"), provider.GetString("REDIS_PASSWORD"))
	}

	cfg, err := LoadEdgeConfig(context.Background(), provider, redisProvider)
	if err != nil {
		log.Fatal("failed to load edge configuration: ", err)
	}
	return cfg
}

// DisconnectMongoDB closes the audit-trail Mongo connection, if one was
// opened. Safe to call on an Edge config, which never sets MongoClient.
func (cfg *APIConfig) DisconnectMongoDB(ctx context.Context) error {
	if cfg.MongoClient != nil {
		return cfg.MongoClient.Disconnect(ctx)
	}
	return nil
}

// MockConfigProvider is a mock implementation of Provider for testing.
type MockConfigProvider struct {
	values map[string]string
}

// NewMockConfigProvider builds a MockConfigProvider from a plain map, for table-driven tests.
func NewMockConfigProvider(values map[string]string) *MockConfigProvider {
	return &MockConfigProvider{values: values}
}

func (m *MockConfigProvider) GetString(key string) string {
	return m.values[key]
}

func (m *MockConfigProvider) GetStringOrDefault(key, defaultValue string) string {
	if value, exists := m.values[key]; exists && value != "" {
		return value
	}
	return defaultValue
}

func (m *MockConfigProvider) GetRequiredString(key string) (string, error) {
	if value, exists := m.values[key]; exists && value != "" {
		return value, nil
	}
	return "", fmt.Errorf("required environment variable %s is not set", key)
}

func (m *MockConfigProvider) GetInt(key string) int {
	value := m.values[key]
	if value == "" {
		return 0
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return 0
}

func (m *MockConfigProvider) GetIntOrDefault(key string, defaultValue int) int {
	value := m.values[key]
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func (m *MockConfigProvider) GetBool(key string) bool {
	value := strings.ToLower(m.values[key])
	return value == "true" || value == "1" || value == "yes"
}

func (m *MockConfigProvider) GetBoolOrDefault(key string, defaultValue bool) bool {
	value := m.values[key]
	if value == "" {
		return defaultValue
	}
	return m.GetBool(key)
}
