// Package config provides configuration management, validation, and provider logic for the timel-e core project.
package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	_ "github.com/lib/pq"

	"github.com/timel-e/core/internal/database"
)

// providers.go: Environment, database, Redis, and MongoDB provider implementations.

const strTrue = "true"

// EnvironmentProvider implements Provider using environment variables.
type EnvironmentProvider struct{}

// NewEnvironmentProvider creates and returns a new EnvironmentProvider instance.
// This provider reads configuration values from environment variables,
// making it suitable for containerized deployments and cloud environments.
func NewEnvironmentProvider() *EnvironmentProvider {
	return &EnvironmentProvider{}
}

// GetString retrieves a string value from environment variables.
func (e *EnvironmentProvider) GetString(key string) string {
	return os.Getenv(key)
}

// GetStringOrDefault retrieves a string value from environment variables with a default fallback.
func (e *EnvironmentProvider) GetStringOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRequiredString retrieves a required string value from environment variables.
func (e *EnvironmentProvider) GetRequiredString(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

// GetInt retrieves an integer value from environment variables.
func (e *EnvironmentProvider) GetInt(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return 0
}

// GetIntOrDefault retrieves an integer value from environment variables with a default fallback.
func (e *EnvironmentProvider) GetIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

// GetBool retrieves a boolean value from environment variables.
func (e *EnvironmentProvider) GetBool(key string) bool {
	value := strings.ToLower(os.Getenv(key))
	return value == strTrue || value == "1" || value == "yes"
}

// GetBoolOrDefault retrieves a boolean value from environment variables with a default fallback.
func (e *EnvironmentProvider) GetBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return e.GetBool(key)
}

// PostgresProvider implements DatabaseProvider for PostgreSQL.
type PostgresProvider struct {
	dbURL   string
	db      *sql.DB
	sqlOpen func(driverName, dataSourceName string) (*sql.DB, error)
}

// NewPostgresProvider creates and returns a new PostgresProvider instance.
func NewPostgresProvider(dbURL string) *PostgresProvider {
	return &PostgresProvider{dbURL: dbURL, sqlOpen: sql.Open}
}

// Connect establishes a connection to the PostgreSQL database and initializes the queries object.
func (p *PostgresProvider) Connect(ctx context.Context) (*sql.DB, *database.Queries, error) {
	sqlOpen := p.sqlOpen
	if sqlOpen == nil {
		sqlOpen = sql.Open
	}
	db, err := sqlOpen("postgres", p.dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p.db = db
	dbQueries := database.New(db)
	return db, dbQueries, nil
}

// Close terminates the database connection and releases associated resources.
func (p *PostgresProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// RedisProviderImpl implements RedisProvider.
type RedisProviderImpl struct {
	addr      string
	username  string
	password  string
	client    *redis.Client
	newClient func(opt *redis.Options) *redis.Client
}

// NewRedisProvider creates and returns a new RedisProviderImpl instance.
// Used by the Edge for response caching and rate limiting.
func NewRedisProvider(addr, username, password string) *RedisProviderImpl {
	return &RedisProviderImpl{
		addr:      addr,
		username:  username,
		password:  password,
		newClient: redis.NewClient,
	}
}

// Connect establishes a connection to the Redis server and verifies connectivity.
func (r *RedisProviderImpl) Connect(ctx context.Context) (redis.Cmdable, error) {
	newClient := r.newClient
	if newClient == nil {
		newClient = redis.NewClient
	}
	client := newClient(&redis.Options{
		Addr:     r.addr,
		Username: r.username,
		Password: r.password,
		DB:       0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.client = client
	return client, nil
}

// Close terminates the Redis connection and releases associated resources.
func (r *RedisProviderImpl) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// MongoProviderImpl implements MongoProvider.
type MongoProviderImpl struct {
	uri     string
	dbName  string
	client  *mongo.Client
	connect func(opts ...*options.ClientOptions) (*mongo.Client, error)
}

// NewMongoProvider creates and returns a new MongoProviderImpl instance.
// Used by the Data Gateway for the notification audit trail.
func NewMongoProvider(uri, dbName string) *MongoProviderImpl {
	return &MongoProviderImpl{uri: uri, dbName: dbName, connect: mongo.Connect}
}

// Connect establishes a connection to the MongoDB server and returns the client and database.
func (m *MongoProviderImpl) Connect(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(m.uri)

	connect := m.connect
	if connect == nil {
		connect = mongo.Connect
	}
	client, err := connect(clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	dbName := m.dbName
	if dbName == "" {
		dbName = "timele_audit"
	}
	db := client.Database(dbName)
	return client, db, nil
}

// Close terminates the MongoDB connection and releases associated resources.
func (m *MongoProviderImpl) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}
